package history

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Run is one journaled render.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Output         string
	PrimaryVideo   string
	SecondaryVideo string
	Status         Status
	Encoder        string
	FramesWritten  int
	FramesTotal    int
	ErrorMessage   string
}

// Duration is the wall time of a finished run, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome is what Finish records.
type Outcome struct {
	Status        Status
	Encoder       string
	FramesWritten int
	Err           error
}
