package model

import "time"

// RunStatus is the analysis run state machine:
// pending -> running -> {completed, failed}. Terminal states are final;
// a new user action creates a new run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// Run is one execution of the analysis pipeline for a company.
type Run struct {
	ID          int64      `json:"id"`
	CompanyID   int64      `json:"companyId"`
	Status      RunStatus  `json:"status"`
	Model       string     `json:"model,omitempty"`
	TokenIn     int64      `json:"tokenIn,omitempty"`
	TokenOut    int64      `json:"tokenOut,omitempty"`
	Cost        float64    `json:"cost,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
