package recorder

import (
	"context"

	"SwingSentinel/internal/model"
)

// Sources of a recorded analysis.
const (
	SourceBot  = "bot"
	SourceScan = "scan"
	SourceCLI  = "cli"
)

// Recorder persists analysis runs and the signals they produced.
type Recorder interface {
	// RecordAnalysis stores a and returns the generated run id.
	RecordAnalysis(ctx context.Context, source string, a *model.Analysis) (string, error)
	Close() error
}
