package model

import "time"

// Company is an analyzed organization. Identity is immutable once
// created; the descriptive fields may change.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Ticker    string    `json:"ticker,omitempty"`
	Sector    string    `json:"sector,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
