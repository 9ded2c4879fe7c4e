package model

import "time"

// FindingCategory widens Category with a general bucket. Narrower
// taxonomies emitted by the model (greenwashing, supply_chain, ...) are
// collapsed into this enum before storage; see agent.MapFindingCategory.
type FindingCategory string

const (
	FindingEnvironmental FindingCategory = "environmental"
	FindingSocial        FindingCategory = "social"
	FindingGovernance    FindingCategory = "governance"
	FindingGeneral       FindingCategory = "general"
)

// Valid reports whether c is a member of the closed enum.
func (c FindingCategory) Valid() bool {
	switch c {
	case FindingEnvironmental, FindingSocial, FindingGovernance, FindingGeneral:
		return true
	}
	return false
}

// Severity is the five-level ordinal: info < low < medium < high < critical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a member of the closed enum.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Finding is a detected ESG issue attached to a run.
type Finding struct {
	ID             int64           `json:"id"`
	CompanyID      int64           `json:"companyId"`
	RunID          int64           `json:"runId"`
	Category       FindingCategory `json:"category"`
	Severity       Severity        `json:"severity"`
	Summary        string          `json:"summary"`
	Details        string          `json:"details,omitempty"`
	Evidence       string          `json:"evidence,omitempty"`
	IsGreenwashing bool            `json:"isGreenwashing"`
	Confidence     float64         `json:"confidence"`
	CreatedAt      time.Time       `json:"createdAt"`
}
