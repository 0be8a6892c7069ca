package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*RunRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &RunRepository{db: db}, mock, func() { _ = db.Close() }
}

func sampleReport() *domain.RunReport {
	started := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	report := domain.NewRunReport("run-1", "/data/cv", domain.ParseKeywords("python"), domain.ParseKeywords("aws"), started)
	report.Add(domain.Outcome{
		Document:    domain.Document{Name: "a.pdf", Path: "/data/cv/a.pdf"},
		Category:    domain.CategoryUnicorn,
		Destination: "/data/cv/UnicornCandidate/a.pdf",
		Moved:       true,
	})
	report.Add(domain.Outcome{
		Document: domain.Document{Name: "b.pdf", Path: "/data/cv/b.pdf"},
		Category: domain.CategoryDiscarded,
		Failures: []domain.Failure{{Document: "b.pdf", Kind: domain.FailureMove, Message: "destination exists"}},
	})
	report.FinishedAt = started.Add(time.Second)
	return report
}

func TestSaveRunWritesRunAndOutcomesInTransaction(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()
	report := sampleReport()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sort_runs").
		WithArgs("run-1", "/data/cv", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), report.StartedAt, report.FinishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sort_outcomes").
		WithArgs("run-1", 0, "a.pdf", "/data/cv/a.pdf", "UnicornCandidate", "/data/cv/UnicornCandidate/a.pdf", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sort_outcomes").
		WithArgs("run-1", 1, "b.pdf", "/data/cv/b.pdf", "Discarded", "", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SaveRun(context.Background(), report); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveRunRollsBackOnOutcomeFailure(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sort_runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sort_outcomes").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	if err := repo.SaveRun(context.Background(), sampleReport()); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetRunReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT run_id, root, required").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetRun(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetRunLoadsOutcomes(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()
	started := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT run_id, root, required").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "root", "required", "desired", "counts", "failures", "started_at", "finished_at"}).
			AddRow("run-1", "/data/cv", []byte(`["python"]`), []byte(`["aws"]`),
				[]byte(`{"UnicornCandidate":1,"Discarded":0,"MinimumCandidate":0,"PlusCandidate":0}`),
				[]byte(`[]`), started, started.Add(time.Second)))
	mock.ExpectQuery("SELECT document, source_path, category").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"document", "source_path", "category", "destination", "moved", "failures"}).
			AddRow("a.pdf", "/data/cv/a.pdf", "UnicornCandidate", "/data/cv/UnicornCandidate/a.pdf", true, []byte(`[]`)))

	report, err := repo.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if report.Counts[domain.CategoryUnicorn] != 1 || len(report.Required) != 1 || report.Required[0] != "python" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Outcomes) != 1 || report.Outcomes[0].Category != domain.CategoryUnicorn || !report.Outcomes[0].Moved {
		t.Fatalf("unexpected outcomes: %+v", report.Outcomes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClassifyDBError(t *testing.T) {
	if !classifyDBError(driver.ErrBadConn).Retry {
		t.Fatalf("bad connections must be retried")
	}
	if classifyDBError(errors.New("syntax error")).Retry {
		t.Fatalf("generic errors must not be retried")
	}
	if v := classifyDBError(context.Canceled); v.Retry || v.Trip {
		t.Fatalf("cancellation must neither retry nor trip")
	}
}
