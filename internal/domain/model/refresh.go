package model

import "time"

// Refresh job states.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// RefreshRequest asks for one load-and-score cycle.
type RefreshRequest struct {
	JobID       string    `json:"jobId"`
	Range       DateRange `json:"range"`
	Filters     Filters   `json:"filters"`
	SubmittedAt time.Time `json:"submittedAt"`
}
