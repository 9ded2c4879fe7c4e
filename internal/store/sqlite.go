package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/esg-advisor/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	ticker     TEXT,
	sector     TEXT,
	country    TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS documents (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id  INTEGER NOT NULL REFERENCES companies(id),
	kind        TEXT NOT NULL,
	filename    TEXT,
	url         TEXT,
	content     TEXT,
	status      TEXT NOT NULL DEFAULT 'pending',
	uploaded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id   INTEGER NOT NULL REFERENCES companies(id),
	status       TEXT NOT NULL DEFAULT 'pending',
	model        TEXT,
	token_in     INTEGER NOT NULL DEFAULT 0,
	token_out    INTEGER NOT NULL DEFAULT 0,
	cost         REAL NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS esg_metrics (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id INTEGER NOT NULL REFERENCES companies(id),
	run_id     INTEGER NOT NULL REFERENCES runs(id),
	category   TEXT NOT NULL,
	metric     TEXT NOT NULL,
	value      REAL NOT NULL,
	unit       TEXT,
	period     TEXT,
	source     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS findings (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id      INTEGER NOT NULL REFERENCES companies(id),
	run_id          INTEGER NOT NULL REFERENCES runs(id),
	category        TEXT NOT NULL,
	severity        TEXT NOT NULL DEFAULT 'medium',
	summary         TEXT NOT NULL,
	details         TEXT,
	evidence        TEXT,
	is_greenwashing INTEGER NOT NULL DEFAULT 0,
	confidence      REAL NOT NULL DEFAULT 0.8,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS actions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id       INTEGER NOT NULL REFERENCES companies(id),
	run_id           INTEGER NOT NULL REFERENCES runs(id),
	finding_id       INTEGER REFERENCES findings(id),
	title            TEXT NOT NULL,
	description      TEXT NOT NULL,
	category         TEXT NOT NULL DEFAULT 'general',
	priority         TEXT NOT NULL DEFAULT 'medium',
	estimated_impact REAL NOT NULL DEFAULT 0,
	estimated_cost   TEXT,
	confidence       REAL NOT NULL DEFAULT 0.8,
	reasoning        TEXT,
	status           TEXT NOT NULL DEFAULT 'proposed',
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS eval_labels (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	finding_id  INTEGER REFERENCES findings(id),
	action_id   INTEGER REFERENCES actions(id),
	label_type  TEXT NOT NULL,
	label_value TEXT NOT NULL,
	feedback    TEXT,
	user_id     TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_documents_company ON documents(company_id);
CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_metrics_run ON esg_metrics(run_id);
CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
CREATE INDEX IF NOT EXISTS idx_actions_run ON actions(run_id);
CREATE INDEX IF NOT EXISTS idx_eval_labels_run ON eval_labels(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Companies ---

func (s *SQLiteStore) CreateCompany(ctx context.Context, c model.Company) (*model.Company, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (name, ticker, sector, country, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Ticker, c.Sector, c.Country, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert company")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: company id")
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return &c, nil
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, ticker, sector, country, created_at, updated_at FROM companies WHERE id = ?`, id)
	var c model.Company
	var ticker, sector, country sql.NullString
	err := row.Scan(&c.ID, &c.Name, &ticker, &sector, &country, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "company", ID: id}
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get company")
	}
	c.Ticker, c.Sector, c.Country = ticker.String, sector.String, country.String
	return &c, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, query string, limit int) ([]model.Company, error) {
	// instr() is case-sensitive, unlike LIKE; the substring match is
	// deliberately case-sensitive. The cap applies to searches only; an
	// empty query returns the full set.
	q := `SELECT id, name, ticker, sector, country, created_at, updated_at FROM companies`
	var args []any
	if query != "" {
		if limit <= 0 {
			limit = 20
		}
		q += ` WHERE instr(name, ?) > 0 ORDER BY created_at DESC, id DESC LIMIT ?`
		args = append(args, query, limit)
	} else {
		q += ` ORDER BY created_at DESC, id DESC`
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		var ticker, sector, country sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &ticker, &sector, &country, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		c.Ticker, c.Sector, c.Country = ticker.String, sector.String, country.String
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

// --- Documents ---

func (s *SQLiteStore) CreateDocument(ctx context.Context, d model.Document) (*model.Document, error) {
	now := time.Now().UTC()
	if d.Status == "" {
		d.Status = model.DocumentStatusPending
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (company_id, kind, filename, url, content, status, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.CompanyID, string(d.Kind), d.Filename, d.URL, d.Content, string(d.Status), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert document")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: document id")
	}
	d.ID = id
	d.UploadedAt = now
	return &d, nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, kind, filename, url, content, status, uploaded_at FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "document", ID: id}
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get document")
	}
	return d, nil
}

func (s *SQLiteStore) ListCompanyDocuments(ctx context.Context, companyID int64) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, kind, filename, url, content, status, uploaded_at FROM documents
		 WHERE company_id = ? ORDER BY uploaded_at DESC`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		out = append(out, *d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list documents iterate")
}

func (s *SQLiteStore) UpdateDocumentStatus(ctx context.Context, id int64, status model.DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update document status %d", id)
	}
	return checkRowsAffected(res, "document", id)
}

// --- Runs ---

func (s *SQLiteStore) CreateRun(ctx context.Context, companyID int64) (*model.Run, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (company_id, status, started_at) VALUES (?, ?, ?)`,
		companyID, string(model.RunStatusPending), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: run id")
	}
	return &model.Run{ID: id, CompanyID: companyID, Status: model.RunStatusPending, StartedAt: now}, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, status, model, token_in, token_out, cost, error, started_at, completed_at
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "run", ID: id}
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return r, nil
}

func (s *SQLiteStore) ListCompanyRuns(ctx context.Context, companyID int64) ([]model.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, status, model, token_in, token_out, cost, error, started_at, completed_at
		 FROM runs WHERE company_id = ? ORDER BY started_at DESC, id DESC`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, id int64, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %d", id)
	}
	return checkRowsAffected(res, "run", id)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, id int64, usage RunUsage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, model = ?, token_in = ?, token_out = ?, cost = ?, completed_at = ? WHERE id = ?`,
		string(model.RunStatusCompleted), usage.Model, usage.TokenIn, usage.TokenOut, usage.Cost, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %d", id)
	}
	return checkRowsAffected(res, "run", id)
}

func (s *SQLiteStore) FailRun(ctx context.Context, id int64, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %d", id)
	}
	return checkRowsAffected(res, "run", id)
}

func (s *SQLiteStore) FailInterruptedRuns(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE status = ?`,
		string(model.RunStatusFailed), "interrupted by process restart", time.Now().UTC(), string(model.RunStatusRunning),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: fail interrupted runs")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// --- Metrics ---

func (s *SQLiteStore) CreateMetric(ctx context.Context, m model.ESGMetric) (*model.ESGMetric, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO esg_metrics (company_id, run_id, category, metric, value, unit, period, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.CompanyID, m.RunID, string(m.Category), m.Metric, m.Value, m.Unit, m.Period, m.Source, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert metric")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: metric id")
	}
	m.ID = id
	m.CreatedAt = now
	return &m, nil
}

func (s *SQLiteStore) ListRunMetrics(ctx context.Context, runID int64) ([]model.ESGMetric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, run_id, category, metric, value, unit, period, source, created_at
		 FROM esg_metrics WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list metrics")
	}
	defer rows.Close()

	var out []model.ESGMetric
	for rows.Next() {
		var m model.ESGMetric
		var unit, period, source sql.NullString
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.RunID, &m.Category, &m.Metric, &m.Value, &unit, &period, &source, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan metric")
		}
		m.Unit, m.Period, m.Source = unit.String, period.String, source.String
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list metrics iterate")
}

// --- Findings ---

func (s *SQLiteStore) CreateFinding(ctx context.Context, f model.Finding) (*model.Finding, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO findings (company_id, run_id, category, severity, summary, details, evidence, is_greenwashing, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.CompanyID, f.RunID, string(f.Category), string(f.Severity), f.Summary, f.Details, f.Evidence, f.IsGreenwashing, f.Confidence, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert finding")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: finding id")
	}
	f.ID = id
	f.CreatedAt = now
	return &f, nil
}

func (s *SQLiteStore) ListRunFindings(ctx context.Context, runID int64) ([]model.Finding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, run_id, category, severity, summary, details, evidence, is_greenwashing, confidence, created_at
		 FROM findings WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list findings")
	}
	defer rows.Close()

	var out []model.Finding
	for rows.Next() {
		var f model.Finding
		var details, evidence sql.NullString
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.RunID, &f.Category, &f.Severity, &f.Summary, &details, &evidence, &f.IsGreenwashing, &f.Confidence, &f.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan finding")
		}
		f.Details, f.Evidence = details.String, evidence.String
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list findings iterate")
}

// --- Actions ---

func (s *SQLiteStore) CreateAction(ctx context.Context, a model.Action) (*model.Action, error) {
	now := time.Now().UTC()
	if a.Status == "" {
		a.Status = model.ActionStatusProposed
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (company_id, run_id, finding_id, title, description, category, priority, estimated_impact, estimated_cost, confidence, reasoning, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.CompanyID, a.RunID, a.FindingID, a.Title, a.Description, string(a.Category), string(a.Priority),
		a.EstimatedImpact, a.EstimatedCost, a.Confidence, a.Reasoning, string(a.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert action")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: action id")
	}
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return &a, nil
}

func (s *SQLiteStore) ListRunActions(ctx context.Context, runID int64) ([]model.Action, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, run_id, finding_id, title, description, category, priority, estimated_impact, estimated_cost, confidence, reasoning, status, created_at, updated_at
		 FROM actions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list actions")
	}
	defer rows.Close()

	var out []model.Action
	for rows.Next() {
		var a model.Action
		var findingID sql.NullInt64
		var cost, reasoning sql.NullString
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.RunID, &findingID, &a.Title, &a.Description, &a.Category, &a.Priority, &a.EstimatedImpact, &cost, &a.Confidence, &reasoning, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan action")
		}
		if findingID.Valid {
			a.FindingID = &findingID.Int64
		}
		a.EstimatedCost, a.Reasoning = cost.String, reasoning.String
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list actions iterate")
}

func (s *SQLiteStore) UpdateActionStatus(ctx context.Context, id int64, status model.ActionStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE actions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update action status %d", id)
	}
	return checkRowsAffected(res, "action", id)
}

// --- Eval labels ---

func (s *SQLiteStore) CreateEvalLabel(ctx context.Context, l model.EvalLabel) (*model.EvalLabel, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO eval_labels (run_id, finding_id, action_id, label_type, label_value, feedback, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.RunID, l.FindingID, l.ActionID, string(l.LabelType), string(l.Value), l.Feedback, l.UserID, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert eval label")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: eval label id")
	}
	l.ID = id
	l.CreatedAt = now
	return &l, nil
}

func (s *SQLiteStore) ListRunEvalLabels(ctx context.Context, runID int64) ([]model.EvalLabel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, finding_id, action_id, label_type, label_value, feedback, user_id, created_at
		 FROM eval_labels WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list eval labels")
	}
	defer rows.Close()

	var out []model.EvalLabel
	for rows.Next() {
		var l model.EvalLabel
		var findingID, actionID sql.NullInt64
		var feedback, userID sql.NullString
		if err := rows.Scan(&l.ID, &l.RunID, &findingID, &actionID, &l.LabelType, &l.Value, &feedback, &userID, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan eval label")
		}
		if findingID.Valid {
			l.FindingID = &findingID.Int64
		}
		if actionID.Valid {
			l.ActionID = &actionID.Int64
		}
		l.Feedback, l.UserID = feedback.String, userID.String
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list eval labels iterate")
}

// --- Analytics ---

func (s *SQLiteStore) ReadOnlyQuery(ctx context.Context, query string) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: read-only query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query columns")
	}

	result := &QueryResult{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan query row")
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[col] = v
		}
		result.Rows = append(result.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: query iterate")
	}
	result.RowCount = len(result.Rows)
	return result, nil
}

// --- helpers ---

func checkRowsAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*model.Document, error) {
	var d model.Document
	var filename, url, content sql.NullString
	err := row.Scan(&d.ID, &d.CompanyID, &d.Kind, &filename, &url, &content, &d.Status, &d.UploadedAt)
	if err != nil {
		return nil, err
	}
	d.Filename, d.URL, d.Content = filename.String, url.String, content.String
	return &d, nil
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var runModel, runErr sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&r.ID, &r.CompanyID, &r.Status, &runModel, &r.TokenIn, &r.TokenOut, &r.Cost, &runErr, &r.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	r.Model, r.Error = runModel.String, runErr.String
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return &r, nil
}
