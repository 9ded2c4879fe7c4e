package model

import "time"

// Priority is the four-level action priority enum.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether p is a member of the closed enum.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ActionStatus is the action lifecycle:
// proposed -> {approved, rejected, in_progress, completed}.
// Approval and rejection are one-way; there is no un-approve.
type ActionStatus string

const (
	ActionStatusProposed   ActionStatus = "proposed"
	ActionStatusApproved   ActionStatus = "approved"
	ActionStatusRejected   ActionStatus = "rejected"
	ActionStatusInProgress ActionStatus = "in_progress"
	ActionStatusCompleted  ActionStatus = "completed"
)

// Valid reports whether s is a member of the closed enum.
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionStatusProposed, ActionStatusApproved, ActionStatusRejected,
		ActionStatusInProgress, ActionStatusCompleted:
		return true
	}
	return false
}

// Action is a recommended remediation tied to a run and optionally a
// finding. EstimatedImpact is in score points; EstimatedCost is free text.
type Action struct {
	ID              int64           `json:"id"`
	CompanyID       int64           `json:"companyId"`
	RunID           int64           `json:"runId"`
	FindingID       *int64          `json:"findingId,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        FindingCategory `json:"category"`
	Priority        Priority        `json:"priority"`
	EstimatedImpact float64         `json:"estimatedImpact"`
	EstimatedCost   string          `json:"estimatedCost,omitempty"`
	Confidence      float64         `json:"confidence"`
	Reasoning       string          `json:"reasoning,omitempty"`
	Status          ActionStatus    `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
