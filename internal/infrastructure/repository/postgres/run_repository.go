package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/resilience"
)

type RunRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewRunRepository(db *sql.DB, executor *resilience.Executor) *RunRepository {
	return &RunRepository{db: db, executor: executor}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS sort_runs (
	run_id TEXT PRIMARY KEY,
	root TEXT NOT NULL,
	required JSONB NOT NULL DEFAULT '[]'::jsonb,
	desired JSONB NOT NULL DEFAULT '[]'::jsonb,
	counts JSONB NOT NULL DEFAULT '{}'::jsonb,
	failures JSONB NOT NULL DEFAULT '[]'::jsonb,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sort_outcomes (
	run_id TEXT NOT NULL REFERENCES sort_runs(run_id) ON DELETE CASCADE,
	position INT NOT NULL,
	document TEXT NOT NULL,
	source_path TEXT NOT NULL,
	category TEXT NOT NULL,
	destination TEXT,
	moved BOOLEAN NOT NULL,
	failures JSONB NOT NULL DEFAULT '[]'::jsonb,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_sort_runs_started_at ON sort_runs(started_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RunRepository) SaveRun(ctx context.Context, report *domain.RunReport) error {
	call := func(ctx context.Context) error { return r.saveRun(ctx, report) }
	if r.executor == nil {
		return call(ctx)
	}
	return r.executor.Execute(ctx, "postgres.save_run", call, classifyDBError)
}

func (r *RunRepository) saveRun(ctx context.Context, report *domain.RunReport) error {
	required, desired, counts, failures, err := marshalRun(report)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO sort_runs (run_id, root, required, desired, counts, failures, started_at, finished_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, report.RunID, report.Root, required, desired, counts, failures, report.StartedAt, report.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, outcome := range report.Outcomes {
		outcomeFailures, err := json.Marshal(nonNilFailures(outcome.Failures))
		if err != nil {
			return fmt.Errorf("marshal outcome failures: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO sort_outcomes (run_id, position, document, source_path, category, destination, moved, failures)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, report.RunID, i, outcome.Document.Name, outcome.Document.Path, string(outcome.Category), outcome.Destination, outcome.Moved, outcomeFailures)
		if err != nil {
			return fmt.Errorf("insert outcome %s: %w", outcome.Document.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run tx: %w", err)
	}
	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, runID string) (*domain.RunReport, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT run_id, root, required, desired, counts, failures, started_at, finished_at
FROM sort_runs
WHERE run_id = $1
`, runID)

	var report domain.RunReport
	var requiredRaw, desiredRaw, countsRaw, failuresRaw []byte
	err := row.Scan(&report.RunID, &report.Root, &requiredRaw, &desiredRaw, &countsRaw, &failuresRaw, &report.StartedAt, &report.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRunNotFound, "get run", fmt.Errorf("run_id=%s", runID))
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	for _, field := range []struct {
		raw  []byte
		dst  any
		name string
	}{
		{requiredRaw, &report.Required, "required"},
		{desiredRaw, &report.Desired, "desired"},
		{countsRaw, &report.Counts, "counts"},
		{failuresRaw, &report.Failures, "failures"},
	} {
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", field.name, err)
		}
	}

	outcomes, err := r.listOutcomes(ctx, runID)
	if err != nil {
		return nil, err
	}
	report.Outcomes = outcomes
	return &report, nil
}

func (r *RunRepository) listOutcomes(ctx context.Context, runID string) ([]domain.Outcome, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document, source_path, category, destination, moved, failures
FROM sort_outcomes
WHERE run_id = $1
ORDER BY position
`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []domain.Outcome{}
	for rows.Next() {
		var o domain.Outcome
		var category string
		var destination sql.NullString
		var failuresRaw []byte
		if err := rows.Scan(&o.Document.Name, &o.Document.Path, &category, &destination, &o.Moved, &failuresRaw); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		if err := json.Unmarshal(failuresRaw, &o.Failures); err != nil {
			return nil, fmt.Errorf("unmarshal outcome failures: %w", err)
		}
		o.Category = domain.Category(category)
		o.Destination = destination.String
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

func marshalRun(report *domain.RunReport) (required, desired, counts, failures []byte, err error) {
	if required, err = json.Marshal(nonNilStrings(report.Required)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal required: %w", err)
	}
	if desired, err = json.Marshal(nonNilStrings(report.Desired)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal desired: %w", err)
	}
	if counts, err = json.Marshal(report.Counts); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal counts: %w", err)
	}
	if failures, err = json.Marshal(nonNilFailures(report.Failures)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal failures: %w", err)
	}
	return required, desired, counts, failures, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilFailures(in []domain.Failure) []domain.Failure {
	if in == nil {
		return []domain.Failure{}
	}
	return in
}

// classifyDBError retries connection-level failures only; constraint and
// syntax errors are permanent.
func classifyDBError(err error) resilience.Verdict {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.Verdict{}
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, driver.ErrBadConn), pgconn.SafeToRetry(err), pgconn.Timeout(err):
		return resilience.Verdict{Retry: true, Trip: true}
	default:
		return resilience.Verdict{Retry: false, Trip: true}
	}
}
