package telemetry

import (
	"fmt"

	"lapsync/internal/services"
)

// MissingColumnError reports a required telemetry column that is absent or
// carries no usable values.
type MissingColumnError struct {
	Column    string
	Path      string
	Malformed bool
}

func (e *MissingColumnError) Error() string {
	what := "missing required column"
	if e.Malformed {
		what = "required column has no numeric values"
	}
	if e.Path == "" {
		return fmt.Sprintf("telemetry: %s %q", what, e.Column)
	}
	return fmt.Sprintf("telemetry %s: %s %q", e.Path, what, e.Column)
}

func (e *MissingColumnError) Unwrap() error { return services.ErrTelemetryContract }

// SyncIntegrityError reports unwrapped lap distance that decreases, which
// would make any lap-distance based frame pairing silently wrong.
type SyncIntegrityError struct {
	Index    int
	Previous float64
	Value    float64
}

func (e *SyncIntegrityError) Error() string {
	return fmt.Sprintf("lap distance not monotonic at sample %d (%.6f after %.6f)", e.Index, e.Value, e.Previous)
}

func (e *SyncIntegrityError) Unwrap() error { return services.ErrSyncIntegrity }
