// Package chart defines the configuration contract handed to a rendering
// collaborator. No rendering happens here, only shape validation and row
// normalization.
package chart

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of chart types a renderer accepts.
type Kind string

const (
	KindLine  Kind = "line"
	KindBar   Kind = "bar"
	KindPie   Kind = "pie"
	KindRadar Kind = "radar"
)

// Valid reports whether k is a member of the closed enum.
func (k Kind) Valid() bool {
	switch k {
	case KindLine, KindBar, KindPie, KindRadar:
		return true
	}
	return false
}

// ValidationError reports a malformed chart config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("chart config field %q: %s", e.Field, e.Message)
}

// YAxis is either a single series name or a list of them on the wire.
type YAxis []string

// UnmarshalJSON accepts both "value" and ["a","b"].
func (y *YAxis) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*y = YAxis{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("y must be a string or an array of strings")
	}
	*y = YAxis(list)
	return nil
}

// MarshalJSON emits a bare string for single-series configs to keep the
// wire shape identical to what the model sent.
func (y YAxis) MarshalJSON() ([]byte, error) {
	if len(y) == 1 {
		return json.Marshal(y[0])
	}
	return json.Marshal([]string(y))
}

// Data carries the tabular payload. Rows may be positional arrays or
// keyed objects; NormalizeRows resolves both to keyed records.
type Data struct {
	Columns []string          `json:"columns"`
	Rows    []json.RawMessage `json:"rows"`
}

// Config is the inner chart configuration.
type Config struct {
	X     string `json:"x,omitempty"`
	Y     YAxis  `json:"y,omitempty"`
	Data  Data   `json:"data"`
	Title string `json:"title,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Rendered is the validated envelope returned by the render_chart tool.
type Rendered struct {
	Type    Kind   `json:"type"`
	Config  Config `json:"config"`
	Message string `json:"message"`
}

// Build validates kind and data and returns the render envelope. The
// title defaults to "Chart" when absent.
func Build(kind Kind, cfg Config) (*Rendered, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown chart type %q", kind)}
	}
	if len(cfg.Data.Columns) == 0 {
		return nil, &ValidationError{Field: "data.columns", Message: "at least one column is required"}
	}
	if _, err := NormalizeRows(cfg.Data); err != nil {
		return nil, err
	}
	if cfg.Title == "" {
		cfg.Title = "Chart"
	}
	return &Rendered{
		Type:    kind,
		Config:  cfg,
		Message: fmt.Sprintf("Chart (%s) generated with %d data points.", kind, len(cfg.Data.Rows)),
	}, nil
}

// NormalizeRows resolves every row to a record keyed by column name.
// Positional arrays are matched to columns by index; extra cells beyond
// the declared columns are dropped. Keyed objects keep only the declared
// columns; columns missing from a keyed row are simply absent from the
// record rather than filled with nulls.
func NormalizeRows(d Data) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(d.Rows))
	for i, raw := range d.Rows {
		var positional []any
		if err := json.Unmarshal(raw, &positional); err == nil {
			record := make(map[string]any, len(d.Columns))
			for j, col := range d.Columns {
				if j < len(positional) {
					record[col] = positional[j]
				}
			}
			out = append(out, record)
			continue
		}

		var keyed map[string]any
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("data.rows[%d]", i),
				Message: "row must be an array or an object",
			}
		}
		record := make(map[string]any, len(d.Columns))
		for _, col := range d.Columns {
			if v, ok := keyed[col]; ok {
				record[col] = v
			}
		}
		out = append(out, record)
	}
	return out, nil
}
