package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sells-group/esg-advisor/internal/model"
)

// NotFoundError reports a referenced entity that does not exist. It is
// surfaced to the caller as a user-visible message and never retried.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// RunUsage carries the accounting fields recorded when a run completes.
type RunUsage struct {
	Model    string
	TokenIn  int64
	TokenOut int64
	Cost     float64
}

// QueryResult is the shape returned by read-only analytics queries.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowCount"`
}

// Store defines the persistence interface for the ESG advisor.
type Store interface {
	// Companies
	CreateCompany(ctx context.Context, c model.Company) (*model.Company, error)
	GetCompany(ctx context.Context, id int64) (*model.Company, error)
	// ListCompanies returns all companies ordered by creation descending
	// when query is empty (limit is ignored), otherwise companies whose
	// name contains the query as a case-sensitive substring, capped at
	// limit.
	ListCompanies(ctx context.Context, query string, limit int) ([]model.Company, error)

	// Documents
	CreateDocument(ctx context.Context, d model.Document) (*model.Document, error)
	GetDocument(ctx context.Context, id int64) (*model.Document, error)
	ListCompanyDocuments(ctx context.Context, companyID int64) ([]model.Document, error)
	UpdateDocumentStatus(ctx context.Context, id int64, status model.DocumentStatus) error

	// Runs
	CreateRun(ctx context.Context, companyID int64) (*model.Run, error)
	GetRun(ctx context.Context, id int64) (*model.Run, error)
	ListCompanyRuns(ctx context.Context, companyID int64) ([]model.Run, error)
	UpdateRunStatus(ctx context.Context, id int64, status model.RunStatus) error
	CompleteRun(ctx context.Context, id int64, usage RunUsage) error
	FailRun(ctx context.Context, id int64, message string) error
	// FailInterruptedRuns marks runs left in the running state (by a
	// previous process) as failed and returns how many were updated.
	FailInterruptedRuns(ctx context.Context) (int, error)

	// Metrics
	CreateMetric(ctx context.Context, m model.ESGMetric) (*model.ESGMetric, error)
	ListRunMetrics(ctx context.Context, runID int64) ([]model.ESGMetric, error)

	// Findings
	CreateFinding(ctx context.Context, f model.Finding) (*model.Finding, error)
	ListRunFindings(ctx context.Context, runID int64) ([]model.Finding, error)

	// Actions
	CreateAction(ctx context.Context, a model.Action) (*model.Action, error)
	ListRunActions(ctx context.Context, runID int64) ([]model.Action, error)
	UpdateActionStatus(ctx context.Context, id int64, status model.ActionStatus) error

	// Eval labels (append-only)
	CreateEvalLabel(ctx context.Context, l model.EvalLabel) (*model.EvalLabel, error)
	ListRunEvalLabels(ctx context.Context, runID int64) ([]model.EvalLabel, error)

	// ReadOnlyQuery executes an already-validated analytics query. The
	// SQL safety gate is responsible for validation; this method only
	// runs the statement and shapes the result.
	ReadOnlyQuery(ctx context.Context, sql string) (*QueryResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
