package model

import "time"

// HR status values.
const (
	HRStatusActive   = "active"
	HRStatusInactive = "inactive"
)

// HRProfile is a normalized employee record from the HR system or file.
type HRProfile struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email,omitempty"`
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`

	// HireDate is a calendar date at UTC midnight; nil when unknown.
	HireDate        *time.Time `json:"hireDate,omitempty"`
	WeeklyHours     *float64   `json:"weeklyHours,omitempty"`
	PartTimePercent float64    `json:"partTimePercent,omitempty"`
	Status          string     `json:"status"`

	Raw map[string]string `json:"-"`
}

// Session is an authentication token with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the session can still be used at now.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

// Task states of an async export.
const (
	TaskReady   = 0
	TaskFailed  = 1
	TaskPending = 2
	TaskRunning = 3
)

// AsyncExportTask tracks one export request on the POS side.
type AsyncExportTask struct {
	TaskID      string
	Status      int
	DownloadURL string
}
