// Command resumesort sorts the résumés in one folder and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/resume-sorter/internal/bootstrap"
	"github.com/kirillkom/resume-sorter/internal/config"
	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/observability/logging"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadWithFile()

	fs := flag.NewFlagSet("resumesort", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		root     = fs.String("root", cfg.SortRoot, "folder holding the résumés")
		required = fs.String("required", cfg.SortRequired, "comma-separated keywords every candidate must have")
		desired  = fs.String("desired", cfg.SortDesired, "comma-separated nice-to-have keywords")
		profile  = fs.String("profile", "", "keyword profile from the config file")
		report   = fs.Bool("report", cfg.SortReportXLSX, "write a spreadsheet report next to the folders")
		workers  = fs.Int("workers", cfg.SortWorkers, "documents extracted in parallel")
		logLevel = fs.String("log-level", cfg.LogLevel, "debug, info, warn or error")
	)
	if parseErr := fs.Parse(args); parseErr != nil {
		if errors.Is(parseErr, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	slog.SetDefault(logging.New(stderr, "resumesort", *logLevel, "text"))
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFatal
	}
	if *root == "" {
		fmt.Fprintln(stderr, "resumesort: -root is required")
		fs.Usage()
		return exitUsage
	}

	cfg.SortReportXLSX = *report
	cfg.SortWorkers = *workers

	app, err := bootstrap.New(ctx, cfg, "resumesort")
	if err != nil {
		fmt.Fprintf(stderr, "bootstrap: %v\n", err)
		return exitFatal
	}
	defer app.Close()

	result, err := app.Sorter.Sort(ctx, domain.SortRequest{
		Root:     *root,
		Required: *required,
		Desired:  *desired,
		Profile:  *profile,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return exitUsage
		}
		return exitFatal
	}

	printSummary(stdout, result)
	return exitOK
}

func printSummary(w io.Writer, report *domain.RunReport) {
	fmt.Fprintf(w, "sorted %d document(s) in %s\n", report.Total(), report.Root)
	for _, c := range domain.AllCategories() {
		fmt.Fprintf(w, "  %-18s %d\n", c, report.Counts[c])
	}
	if len(report.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "%d failure(s):\n", len(report.Failures))
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  %s [%s] %s\n", f.Document, f.Kind, f.Message)
	}
}
