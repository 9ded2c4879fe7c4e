package model

import "time"

// LabelType categorizes what aspect of a finding or action the human
// feedback addresses.
type LabelType string

const (
	LabelAccuracy    LabelType = "accuracy"
	LabelRelevance   LabelType = "relevance"
	LabelUsefulness  LabelType = "usefulness"
	LabelCorrectness LabelType = "correctness"
)

// Valid reports whether t is a member of the closed enum.
func (t LabelType) Valid() bool {
	switch t {
	case LabelAccuracy, LabelRelevance, LabelUsefulness, LabelCorrectness:
		return true
	}
	return false
}

// LabelValue is the three-way sentiment of a label.
type LabelValue string

const (
	LabelPositive LabelValue = "positive"
	LabelNegative LabelValue = "negative"
	LabelNeutral  LabelValue = "neutral"
)

// Valid reports whether v is a member of the closed enum.
func (v LabelValue) Valid() bool {
	switch v {
	case LabelPositive, LabelNegative, LabelNeutral:
		return true
	}
	return false
}

// EvalLabel is an append-only human feedback record attached to a
// finding or an action.
type EvalLabel struct {
	ID        int64      `json:"id"`
	RunID     int64      `json:"runId"`
	FindingID *int64     `json:"findingId,omitempty"`
	ActionID  *int64     `json:"actionId,omitempty"`
	LabelType LabelType  `json:"labelType"`
	Value     LabelValue `json:"labelValue"`
	Feedback  string     `json:"feedback,omitempty"`
	UserID    string     `json:"userId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
