package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/esg-advisor/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateCompany(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO companies`).
		WithArgs("Acme Renewables", "ACM", "Energy", "US", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	c, err := s.CreateCompany(context.Background(), model.Company{
		Name: "Acme Renewables", Ticker: "ACM", Sector: "Energy", Country: "US",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCompany_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, ticker, sector, country, created_at, updated_at FROM companies WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetCompany(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCompanies_Search(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	ticker, sector, country := "GRN", "Energy", "US"
	mock.ExpectQuery(`strpos\(name, \$1\) > 0`).
		WithArgs("Green", 20).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "name", "ticker", "sector", "country", "created_at", "updated_at"}).
			AddRow(int64(1), "Green Energy Corp", &ticker, &sector, &country, now, now))

	got, err := s.ListCompanies(context.Background(), "Green", 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Green Energy Corp", got[0].Name)
	assert.Equal(t, "GRN", got[0].Ticker)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCompanies_AllUncapped(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	ticker, sector, country := "GRN", "Energy", "US"
	// No query: no WHERE clause and no LIMIT.
	mock.ExpectQuery(`FROM companies ORDER BY created_at DESC, id DESC$`).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "name", "ticker", "sector", "country", "created_at", "updated_at"}).
			AddRow(int64(2), "Solar United", &ticker, &sector, &country, now, now).
			AddRow(int64(1), "Green Energy Corp", &ticker, &sector, &country, now, now))

	got, err := s.ListCompanies(context.Background(), "", 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Solar United", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO runs`).
		WithArgs(int64(3), "pending", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	run, err := s.CreateRun(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(11), run.ID)
	assert.Equal(t, model.RunStatusPending, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, model = \$2`).
		WithArgs("completed", "claude-sonnet-4-5", int64(1000), int64(500), 0.01, pgxmock.AnyArg(), int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), 11, RunUsage{
		Model: "claude-sonnet-4-5", TokenIn: 1000, TokenOut: 500, Cost: 0.01,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, error = \$2`).
		WithArgs("failed", "boom", pgxmock.AnyArg(), int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.FailRun(context.Background(), 99, "boom")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailInterruptedRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, error = \$2, completed_at = \$3 WHERE status = \$4`).
		WithArgs("failed", pgxmock.AnyArg(), pgxmock.AnyArg(), "running").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := s.FailInterruptedRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateActionStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE actions SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("approved", pgxmock.AnyArg(), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateActionStatus(context.Background(), 5, model.ActionStatusApproved)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReadOnlyQuery(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT name, count FROM`).
		WillReturnRows(pgxmock.NewRows([]string{"name", "count"}).
			AddRow("Acme", int64(3)).
			AddRow("Globex", int64(1)))

	res, err := s.ReadOnlyQuery(context.Background(), "SELECT name, count FROM summary LIMIT 5000")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "count"}, res.Columns)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, "Acme", res.Rows[0]["name"])
	assert.Equal(t, int64(1), res.Rows[1]["count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
