package metrics

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrClosed is returned by recorders that no longer accept runs
var ErrClosed = errors.New("metrics recorder is closed")

// Recorder stores a run and returns its record ID.
// Implementations assign a UUID when run.ID is empty.
type Recorder interface {
	Record(ctx context.Context, run Run) (string, error)
}

// NopRecorder discards runs
type NopRecorder struct{}

// Record returns the run ID, generating one if needed
func (NopRecorder) Record(_ context.Context, run Run) (string, error) {
	return ensureID(run.ID), nil
}

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
