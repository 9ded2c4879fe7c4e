package sqlgate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/esg-advisor/internal/store"
)

func TestValidateAndPrepare_AppendsLimit(t *testing.T) {
	got, err := ValidateAndPrepare("SELECT * FROM companies")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM companies LIMIT 5000", got)
}

func TestValidateAndPrepare_ExistingLimitUnchanged(t *testing.T) {
	got, err := ValidateAndPrepare("select id from runs limit 10")
	require.NoError(t, err)
	assert.Equal(t, "select id from runs limit 10", got)
}

func TestValidateAndPrepare_WithCTE(t *testing.T) {
	got, err := ValidateAndPrepare("WITH t AS (SELECT 1 AS n) SELECT n FROM t")
	require.NoError(t, err)
	assert.Equal(t, "WITH t AS (SELECT 1 AS n) SELECT n FROM t LIMIT 5000", got)
}

func TestValidateAndPrepare_RejectsNonSelect(t *testing.T) {
	_, err := ValidateAndPrepare("UPDATE companies SET name='x'")
	require.Error(t, err)
	var unsafe *UnsafeQueryError
	require.True(t, errors.As(err, &unsafe))
	assert.Equal(t, "UPDATE", unsafe.StatementType)
}

func TestValidateAndPrepare_RejectsForbiddenKeyword(t *testing.T) {
	_, err := ValidateAndPrepare("DROP TABLE companies")
	require.Error(t, err)
	var unsafe *UnsafeQueryError
	require.True(t, errors.As(err, &unsafe), "DROP fails the prefix check first")

	// A SELECT smuggling in a second statement is caught by the keyword scan.
	_, err = ValidateAndPrepare("SELECT * FROM x; DELETE FROM y")
	require.Error(t, err)
	var forbidden *ForbiddenKeywordError
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, "DELETE", forbidden.Keyword)
}

func TestValidateAndPrepare_SubstringScanOverRejects(t *testing.T) {
	// "created_at" contains CREATE. The scan is deliberately a substring
	// scan, so this is rejected.
	_, err := ValidateAndPrepare("SELECT created_at FROM companies")
	require.Error(t, err)
	var forbidden *ForbiddenKeywordError
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, "CREATE", forbidden.Keyword)
}

func TestValidateAndPrepare_TrimsWhitespace(t *testing.T) {
	got, err := ValidateAndPrepare("   \n  SELECT 1  ")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 LIMIT 5000", got)
}

func TestExecutor_Execute(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "gate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	ex := NewExecutor(st)

	res, err := ex.Execute(ctx, "SELECT name FROM companies")
	require.NoError(t, err)
	assert.Equal(t, 0, res.RowCount)

	_, err = ex.Execute(ctx, "DELETE FROM companies")
	var unsafe *UnsafeQueryError
	require.True(t, errors.As(err, &unsafe))

	_, err = ex.Execute(ctx, "SELECT * FROM no_such_table")
	var exec *QueryExecutionError
	require.True(t, errors.As(err, &exec))
	assert.Contains(t, exec.Error(), "sql execution error")
}
