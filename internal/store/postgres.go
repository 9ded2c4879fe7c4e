package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/esg-advisor/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock's pool
// satisfies it, which keeps the Postgres store unit-testable.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	ticker     TEXT,
	sector     TEXT,
	country    TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id          BIGSERIAL PRIMARY KEY,
	company_id  BIGINT NOT NULL REFERENCES companies(id),
	kind        TEXT NOT NULL,
	filename    TEXT,
	url         TEXT,
	content     TEXT,
	status      TEXT NOT NULL DEFAULT 'pending',
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id           BIGSERIAL PRIMARY KEY,
	company_id   BIGINT NOT NULL REFERENCES companies(id),
	status       TEXT NOT NULL DEFAULT 'pending',
	model        TEXT,
	token_in     BIGINT NOT NULL DEFAULT 0,
	token_out    BIGINT NOT NULL DEFAULT 0,
	cost         DOUBLE PRECISION NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS esg_metrics (
	id         BIGSERIAL PRIMARY KEY,
	company_id BIGINT NOT NULL REFERENCES companies(id),
	run_id     BIGINT NOT NULL REFERENCES runs(id),
	category   TEXT NOT NULL,
	metric     TEXT NOT NULL,
	value      DOUBLE PRECISION NOT NULL,
	unit       TEXT,
	period     TEXT,
	source     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS findings (
	id              BIGSERIAL PRIMARY KEY,
	company_id      BIGINT NOT NULL REFERENCES companies(id),
	run_id          BIGINT NOT NULL REFERENCES runs(id),
	category        TEXT NOT NULL,
	severity        TEXT NOT NULL DEFAULT 'medium',
	summary         TEXT NOT NULL,
	details         TEXT,
	evidence        TEXT,
	is_greenwashing BOOLEAN NOT NULL DEFAULT false,
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0.8,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS actions (
	id               BIGSERIAL PRIMARY KEY,
	company_id       BIGINT NOT NULL REFERENCES companies(id),
	run_id           BIGINT NOT NULL REFERENCES runs(id),
	finding_id       BIGINT REFERENCES findings(id),
	title            TEXT NOT NULL,
	description      TEXT NOT NULL,
	category         TEXT NOT NULL DEFAULT 'general',
	priority         TEXT NOT NULL DEFAULT 'medium',
	estimated_impact DOUBLE PRECISION NOT NULL DEFAULT 0,
	estimated_cost   TEXT,
	confidence       DOUBLE PRECISION NOT NULL DEFAULT 0.8,
	reasoning        TEXT,
	status           TEXT NOT NULL DEFAULT 'proposed',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS eval_labels (
	id          BIGSERIAL PRIMARY KEY,
	run_id      BIGINT NOT NULL REFERENCES runs(id),
	finding_id  BIGINT REFERENCES findings(id),
	action_id   BIGINT REFERENCES actions(id),
	label_type  TEXT NOT NULL,
	label_value TEXT NOT NULL,
	feedback    TEXT,
	user_id     TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_documents_company ON documents(company_id);
CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_metrics_run ON esg_metrics(run_id);
CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
CREATE INDEX IF NOT EXISTS idx_actions_run ON actions(run_id);
CREATE INDEX IF NOT EXISTS idx_eval_labels_run ON eval_labels(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- Companies ---

func (s *PostgresStore) CreateCompany(ctx context.Context, c model.Company) (*model.Company, error) {
	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO companies (name, ticker, sector, country, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		c.Name, c.Ticker, c.Sector, c.Country, now, now,
	).Scan(&c.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert company")
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return &c, nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	var c model.Company
	var ticker, sector, country *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, ticker, sector, country, created_at, updated_at FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &ticker, &sector, &country, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "company", ID: id}
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get company")
	}
	c.Ticker, c.Sector, c.Country = deref(ticker), deref(sector), deref(country)
	return &c, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context, query string, limit int) ([]model.Company, error) {
	q := `SELECT id, name, ticker, sector, country, created_at, updated_at FROM companies`
	var args []any
	if query != "" {
		// strpos is case-sensitive; the substring match is deliberate.
		// The cap applies to searches only.
		if limit <= 0 {
			limit = 20
		}
		q += ` WHERE strpos(name, $1) > 0 ORDER BY created_at DESC, id DESC LIMIT $2`
		args = append(args, query, limit)
	} else {
		q += ` ORDER BY created_at DESC, id DESC`
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		var ticker, sector, country *string
		if err := rows.Scan(&c.ID, &c.Name, &ticker, &sector, &country, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		c.Ticker, c.Sector, c.Country = deref(ticker), deref(sector), deref(country)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

// --- Documents ---

func (s *PostgresStore) CreateDocument(ctx context.Context, d model.Document) (*model.Document, error) {
	now := time.Now().UTC()
	if d.Status == "" {
		d.Status = model.DocumentStatusPending
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO documents (company_id, kind, filename, url, content, status, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		d.CompanyID, string(d.Kind), d.Filename, d.URL, d.Content, string(d.Status), now,
	).Scan(&d.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert document")
	}
	d.UploadedAt = now
	return &d, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	var d model.Document
	var filename, url, content *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_id, kind, filename, url, content, status, uploaded_at FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.CompanyID, &d.Kind, &filename, &url, &content, &d.Status, &d.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "document", ID: id}
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get document")
	}
	d.Filename, d.URL, d.Content = deref(filename), deref(url), deref(content)
	return &d, nil
}

func (s *PostgresStore) ListCompanyDocuments(ctx context.Context, companyID int64) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, kind, filename, url, content, status, uploaded_at FROM documents
		 WHERE company_id = $1 ORDER BY uploaded_at DESC`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var d model.Document
		var filename, url, content *string
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Kind, &filename, &url, &content, &d.Status, &d.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		d.Filename, d.URL, d.Content = deref(filename), deref(url), deref(content)
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, id int64, status model.DocumentStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE documents SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document status %d", id)
	}
	return checkTag(tag, "document", id)
}

// --- Runs ---

func (s *PostgresStore) CreateRun(ctx context.Context, companyID int64) (*model.Run, error) {
	now := time.Now().UTC()
	r := model.Run{CompanyID: companyID, Status: model.RunStatusPending, StartedAt: now}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO runs (company_id, status, started_at) VALUES ($1, $2, $3) RETURNING id`,
		companyID, string(model.RunStatusPending), now,
	).Scan(&r.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return &r, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	var r model.Run
	var runModel, runErr *string
	var completedAt *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_id, status, model, token_in, token_out, cost, error, started_at, completed_at
		 FROM runs WHERE id = $1`, id,
	).Scan(&r.ID, &r.CompanyID, &r.Status, &runModel, &r.TokenIn, &r.TokenOut, &r.Cost, &runErr, &r.StartedAt, &completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "run", ID: id}
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	r.Model, r.Error = deref(runModel), deref(runErr)
	r.CompletedAt = completedAt
	return &r, nil
}

func (s *PostgresStore) ListCompanyRuns(ctx context.Context, companyID int64) ([]model.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, status, model, token_in, token_out, cost, error, started_at, completed_at
		 FROM runs WHERE company_id = $1 ORDER BY started_at DESC, id DESC`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		var r model.Run
		var runModel, runErr *string
		var completedAt *time.Time
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.Status, &runModel, &r.TokenIn, &r.TokenOut, &r.Cost, &runErr, &r.StartedAt, &completedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Model, r.Error = deref(runModel), deref(runErr)
		r.CompletedAt = completedAt
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, id int64, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE runs SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %d", id)
	}
	return checkTag(tag, "run", id)
}

func (s *PostgresStore) CompleteRun(ctx context.Context, id int64, usage RunUsage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, model = $2, token_in = $3, token_out = $4, cost = $5, completed_at = $6 WHERE id = $7`,
		string(model.RunStatusCompleted), usage.Model, usage.TokenIn, usage.TokenOut, usage.Cost, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %d", id)
	}
	return checkTag(tag, "run", id)
}

func (s *PostgresStore) FailRun(ctx context.Context, id int64, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %d", id)
	}
	return checkTag(tag, "run", id)
}

func (s *PostgresStore) FailInterruptedRuns(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, completed_at = $3 WHERE status = $4`,
		string(model.RunStatusFailed), "interrupted by process restart", time.Now().UTC(), string(model.RunStatusRunning),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: fail interrupted runs")
	}
	return int(tag.RowsAffected()), nil
}

// --- Metrics ---

func (s *PostgresStore) CreateMetric(ctx context.Context, m model.ESGMetric) (*model.ESGMetric, error) {
	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO esg_metrics (company_id, run_id, category, metric, value, unit, period, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		m.CompanyID, m.RunID, string(m.Category), m.Metric, m.Value, m.Unit, m.Period, m.Source, now,
	).Scan(&m.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert metric")
	}
	m.CreatedAt = now
	return &m, nil
}

func (s *PostgresStore) ListRunMetrics(ctx context.Context, runID int64) ([]model.ESGMetric, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, run_id, category, metric, value, unit, period, source, created_at
		 FROM esg_metrics WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list metrics")
	}
	defer rows.Close()

	var out []model.ESGMetric
	for rows.Next() {
		var m model.ESGMetric
		var unit, period, source *string
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.RunID, &m.Category, &m.Metric, &m.Value, &unit, &period, &source, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan metric")
		}
		m.Unit, m.Period, m.Source = deref(unit), deref(period), deref(source)
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list metrics iterate")
}

// --- Findings ---

func (s *PostgresStore) CreateFinding(ctx context.Context, f model.Finding) (*model.Finding, error) {
	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO findings (company_id, run_id, category, severity, summary, details, evidence, is_greenwashing, confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		f.CompanyID, f.RunID, string(f.Category), string(f.Severity), f.Summary, f.Details, f.Evidence, f.IsGreenwashing, f.Confidence, now,
	).Scan(&f.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert finding")
	}
	f.CreatedAt = now
	return &f, nil
}

func (s *PostgresStore) ListRunFindings(ctx context.Context, runID int64) ([]model.Finding, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, run_id, category, severity, summary, details, evidence, is_greenwashing, confidence, created_at
		 FROM findings WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list findings")
	}
	defer rows.Close()

	var out []model.Finding
	for rows.Next() {
		var f model.Finding
		var details, evidence *string
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.RunID, &f.Category, &f.Severity, &f.Summary, &details, &evidence, &f.IsGreenwashing, &f.Confidence, &f.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan finding")
		}
		f.Details, f.Evidence = deref(details), deref(evidence)
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list findings iterate")
}

// --- Actions ---

func (s *PostgresStore) CreateAction(ctx context.Context, a model.Action) (*model.Action, error) {
	now := time.Now().UTC()
	if a.Status == "" {
		a.Status = model.ActionStatusProposed
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO actions (company_id, run_id, finding_id, title, description, category, priority, estimated_impact, estimated_cost, confidence, reasoning, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`,
		a.CompanyID, a.RunID, a.FindingID, a.Title, a.Description, string(a.Category), string(a.Priority),
		a.EstimatedImpact, a.EstimatedCost, a.Confidence, a.Reasoning, string(a.Status), now, now,
	).Scan(&a.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert action")
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return &a, nil
}

func (s *PostgresStore) ListRunActions(ctx context.Context, runID int64) ([]model.Action, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, run_id, finding_id, title, description, category, priority, estimated_impact, estimated_cost, confidence, reasoning, status, created_at, updated_at
		 FROM actions WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list actions")
	}
	defer rows.Close()

	var out []model.Action
	for rows.Next() {
		var a model.Action
		var findingID *int64
		var cost, reasoning *string
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.RunID, &findingID, &a.Title, &a.Description, &a.Category, &a.Priority, &a.EstimatedImpact, &cost, &a.Confidence, &reasoning, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan action")
		}
		a.FindingID = findingID
		a.EstimatedCost, a.Reasoning = deref(cost), deref(reasoning)
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list actions iterate")
}

func (s *PostgresStore) UpdateActionStatus(ctx context.Context, id int64, status model.ActionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE actions SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update action status %d", id)
	}
	return checkTag(tag, "action", id)
}

// --- Eval labels ---

func (s *PostgresStore) CreateEvalLabel(ctx context.Context, l model.EvalLabel) (*model.EvalLabel, error) {
	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO eval_labels (run_id, finding_id, action_id, label_type, label_value, feedback, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		l.RunID, l.FindingID, l.ActionID, string(l.LabelType), string(l.Value), l.Feedback, l.UserID, now,
	).Scan(&l.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert eval label")
	}
	l.CreatedAt = now
	return &l, nil
}

func (s *PostgresStore) ListRunEvalLabels(ctx context.Context, runID int64) ([]model.EvalLabel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, finding_id, action_id, label_type, label_value, feedback, user_id, created_at
		 FROM eval_labels WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list eval labels")
	}
	defer rows.Close()

	var out []model.EvalLabel
	for rows.Next() {
		var l model.EvalLabel
		var findingID, actionID *int64
		var feedback, userID *string
		if err := rows.Scan(&l.ID, &l.RunID, &findingID, &actionID, &l.LabelType, &l.Value, &feedback, &userID, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan eval label")
		}
		l.FindingID, l.ActionID = findingID, actionID
		l.Feedback, l.UserID = deref(feedback), deref(userID)
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list eval labels iterate")
}

// --- Analytics ---

func (s *PostgresStore) ReadOnlyQuery(ctx context.Context, query string) (*QueryResult, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: read-only query")
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}

	result := &QueryResult{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan query row")
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			if i < len(values) {
				record[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: query iterate")
	}
	result.RowCount = len(result.Rows)
	return result, nil
}

// --- helpers ---

func checkTag(tag pgconn.CommandTag, entity string, id int64) error {
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
