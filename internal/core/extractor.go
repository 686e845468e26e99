package core

import "context"

// TextExtractor pulls readable text out of an uploaded document so it can be
// quoted in a prompt.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}
