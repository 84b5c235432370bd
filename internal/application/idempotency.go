package application

import "context"

// RunLock guards against overlapping ingestion runs for the same window.
// Correctness does not depend on it: upserts keyed by (asset, date) converge.
type RunLock interface {
	// TryReserve returns true if key was absent and is now reserved.
	// Returns false if the key already exists (a run is in progress).
	TryReserve(ctx context.Context, key string) (bool, error)
	// Release drops a reservation taken by TryReserve once the run ends.
	Release(ctx context.Context, key string) error
}

// NoopRunLock always succeeds; useful for tests/dev when Redis is disabled.
type NoopRunLock struct{}

func (NoopRunLock) TryReserve(context.Context, string) (bool, error) { return true, nil }
func (NoopRunLock) Release(context.Context, string) error            { return nil }
