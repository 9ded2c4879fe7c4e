// Package sqlgate validates and rewrites candidate read-only SQL before
// it is handed to the store for execution.
package sqlgate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/store"
)

// UnsafeQueryError reports a statement that is not a read-only SELECT/WITH.
type UnsafeQueryError struct {
	StatementType string
}

func (e *UnsafeQueryError) Error() string {
	return fmt.Sprintf("only SELECT and WITH queries are allowed, got %q", e.StatementType)
}

// ForbiddenKeywordError reports a write or DDL keyword found in the query.
type ForbiddenKeywordError struct {
	Keyword string
}

func (e *ForbiddenKeywordError) Error() string {
	return fmt.Sprintf("forbidden keyword %q not allowed in read-only queries", e.Keyword)
}

// QueryExecutionError wraps a store failure while running a validated query.
type QueryExecutionError struct {
	Message string
}

func (e *QueryExecutionError) Error() string {
	return "sql execution error: " + e.Message
}

// forbiddenKeywords is scanned as substrings, not tokens. Deliberately
// conservative: an identifier containing one of these words is rejected too.
var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER",
	"CREATE", "TRUNCATE", "PRAGMA", "ATTACH",
}

// ValidateAndPrepare checks that sql is a read-only statement and appends
// a LIMIT 5000 clause when the query carries no LIMIT of its own. This is
// the sole rewrite; the returned string is otherwise the trimmed input.
func ValidateAndPrepare(sql string) (string, error) {
	trimmed := strings.TrimSpace(sql)
	upper := strings.ToUpper(trimmed)

	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		statement := upper
		if i := strings.IndexAny(statement, " \t\n"); i > 0 {
			statement = statement[:i]
		}
		return "", &UnsafeQueryError{StatementType: statement}
	}

	for _, kw := range forbiddenKeywords {
		if strings.Contains(upper, kw) {
			return "", &ForbiddenKeywordError{Keyword: kw}
		}
	}

	if !strings.Contains(upper, "LIMIT") {
		trimmed += " LIMIT 5000"
	}
	return trimmed, nil
}

// Executor runs validated queries against the store.
type Executor struct {
	store store.Store
}

// NewExecutor wires the gate to a store.
func NewExecutor(st store.Store) *Executor {
	return &Executor{store: st}
}

// Execute validates sql and runs it, wrapping store failures as
// QueryExecutionError.
func (e *Executor) Execute(ctx context.Context, sql string) (*store.QueryResult, error) {
	prepared, err := ValidateAndPrepare(sql)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("executing read-only query", zap.String("sql", prepared))

	res, err := e.store.ReadOnlyQuery(ctx, prepared)
	if err != nil {
		return nil, &QueryExecutionError{Message: err.Error()}
	}
	return res, nil
}
