package core

import (
	"context"

	"github.com/markdave123-py/NexSupply/internal/models"
)

// Analyzer runs a sourcing analysis. A reported failure comes back as a
// response with Success false; err is reserved for calls that never produced
// a response.
type Analyzer interface {
	Analyze(ctx context.Context, in models.AnalysisInput) (*models.AnalysisResponse, error)
}
