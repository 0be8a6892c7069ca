package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/resume-sorter/internal/config"
	"github.com/kirillkom/resume-sorter/internal/core/ports"
	"github.com/kirillkom/resume-sorter/internal/core/usecase"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/extractor"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/extractor/docxtext"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/queue/nats"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/report/xlsx"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/resilience"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/resume-sorter/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Sorter   ports.ResumeSorter
	Runs     ports.RunReader
	Queue    *nats.Queue
	Requests ports.SortRequestQueue
	Metrics  *metrics.SortMetrics

	closeFn func()
}

// New wires the sorter. Postgres, NATS and the spreadsheet report are only
// attached when configured; Runs, Queue and Requests stay nil otherwise.
func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	executor := resilience.NewExecutor(resilience.Policy{
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryInitialBackoff,
		BreakerEnabled: cfg.BreakerEnabled,
	})

	storage := localfs.New()
	extractors := extractor.NewRouter().
		Register(".pdf", pdftext.NewExtractor(storage)).
		Register(".docx", docxtext.NewExtractor(storage)).
		Register(".txt", plaintext.NewExtractor(storage))
	for _, ext := range cfg.SortExtensions {
		if !extractors.Supports(ext) {
			return nil, fmt.Errorf("no text extractor for extension %q", ext)
		}
	}

	sortMetrics := metrics.NewSortMetrics(service)
	opts := usecase.SortOptions{
		FolderNames: cfg.FolderNames,
		Extensions:  cfg.SortExtensions,
		Workers:     cfg.SortWorkers,
		Profiles:    cfg.Profiles,
		AllowedBase: cfg.SortAllowedBase,
		Observer:    sortMetrics,
	}

	app := &App{
		Config:  cfg,
		Metrics: sortMetrics,
	}

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewRunRepository(db, executor)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		opts.Recorder = repo
		app.Runs = repo
	}

	if cfg.NATSURL != "" {
		queue, err := nats.New(cfg.NATSURL, nats.Options{
			SortSubject:        cfg.NATSSortSubject,
			ResultSubject:      cfg.NATSResultSubject,
			ResilienceExecutor: executor,
		})
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		opts.Publisher = queue
		app.Queue = queue
		app.Requests = queue
	}

	if cfg.SortReportXLSX {
		opts.ReportWriter = xlsx.NewWriter(cfg.SortReportDir)
	}

	app.Sorter = usecase.NewSortUseCase(storage, extractors, opts)
	app.closeFn = func() {
		if app.Queue != nil {
			app.Queue.Close()
		}
		if db != nil {
			_ = db.Close()
		}
	}

	slog.Info("bootstrap_ready",
		"extensions", cfg.SortExtensions,
		"workers", cfg.SortWorkers,
		"postgres", db != nil,
		"nats", app.Queue != nil,
		"xlsx_report", cfg.SortReportXLSX,
	)
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
