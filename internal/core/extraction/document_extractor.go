// Package extraction turns uploaded documents into prompt text.
package extraction

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/NexSupply/internal/core"
)

// DefaultMaxChars caps how much extracted text is quoted in a prompt.
const DefaultMaxChars = 20000

var _ core.TextExtractor = (*DocconvExtractor)(nil)

type DocconvExtractor struct {
	useReadability bool
	maxChars       int
}

func NewDocconvExtractor(useReadability bool, maxChars int) *DocconvExtractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &DocconvExtractor{useReadability: useReadability, maxChars: maxChars}
}

// Supported reports whether contentType is a document the extractor can read.
// Images are left to the model.
func Supported(contentType string) bool {
	switch baseType(contentType) {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.oasis.opendocument.text",
		"application/rtf", "text/rtf",
		"text/html", "text/xml", "application/xml",
		"text/plain", "text/csv":
		return true
	}
	return false
}

// ExtractText returns the document's text with blank lines removed, cut to
// the configured limit. docconv runs on its own goroutine so a cancelled
// context returns promptly.
func (e *DocconvExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	ct := baseType(contentType)
	if !Supported(ct) {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	if len(data) == 0 {
		return "", nil
	}

	if ct == "text/plain" || ct == "text/csv" {
		return e.tidy(string(data)), nil
	}

	type result struct {
		body string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		res, err := docconv.Convert(bytes.NewReader(data), ct, e.useReadability)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{body: res.Body}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("docconv %s: %w", ct, r.err)
		}
		return e.tidy(r.body), nil
	}
}

func (e *DocconvExtractor) tidy(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	out := b.String()
	if len(out) <= e.maxChars {
		return out
	}
	out = out[:e.maxChars]
	for !utf8.ValidString(out) {
		out = out[:len(out)-1]
	}
	return out
}

func baseType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
