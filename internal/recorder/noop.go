package recorder

import (
	"context"

	"SwingSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ context.Context, _ string, _ *model.Analysis) (string, error) {
	return "", nil
}

func (n *NoopRecorder) Close() error { return nil }
