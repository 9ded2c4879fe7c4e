package model

import (
	"math"
	"time"
)

// Category is the closed ESG category enum for metrics.
type Category string

const (
	CategoryEnvironmental Category = "environmental"
	CategorySocial        Category = "social"
	CategoryGovernance    Category = "governance"
)

// Categories lists the three fixed metric categories. A run's metric
// rows, when present, cover exactly these — never more, never fewer.
var Categories = []Category{CategoryEnvironmental, CategorySocial, CategoryGovernance}

// ESGMetric is one scored category for a run. Value is an integer score
// clamped to [0, 100], stored as a float for forward compatibility with
// non-score metrics.
type ESGMetric struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"companyId"`
	RunID     int64     `json:"runId"`
	Category  Category  `json:"category"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Period    string    `json:"period,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Scores is the per-category score snapshot surfaced wherever metrics
// are read. Total is derived, never stored as a fourth category.
type Scores struct {
	Environmental int `json:"environmental"`
	Social        int `json:"social"`
	Governance    int `json:"governance"`
	Total         int `json:"total"`
}

// ScoresFromMetrics folds metric rows into a Scores snapshot. Missing
// categories default to 0; Total is the rounded mean of the three.
func ScoresFromMetrics(metrics []ESGMetric) Scores {
	var s Scores
	for _, m := range metrics {
		v := int(math.Round(m.Value))
		switch m.Category {
		case CategoryEnvironmental:
			s.Environmental = v
		case CategorySocial:
			s.Social = v
		case CategoryGovernance:
			s.Governance = v
		}
	}
	s.Total = int(math.Round(float64(s.Environmental+s.Social+s.Governance) / 3))
	return s
}
