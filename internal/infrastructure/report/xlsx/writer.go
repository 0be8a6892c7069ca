package xlsx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

const (
	summarySheet   = "Summary"
	documentsSheet = "Documents"
)

// Writer renders a run report as a spreadsheet. Reports go to dir, or to the
// run's root folder when dir is empty.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) WriteReport(_ context.Context, report *domain.RunReport) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSummary(f, report); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(documentsSheet); err != nil {
		return "", fmt.Errorf("create documents sheet: %w", err)
	}
	if err := writeDocuments(f, report); err != nil {
		return "", err
	}

	dir := w.dir
	if dir == "" {
		dir = report.Root
	}
	path := filepath.Join(dir, fileName(report))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func fileName(report *domain.RunReport) string {
	id := report.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("sort-report-%s-%s.xlsx", report.StartedAt.UTC().Format("20060102-150405"), id)
}

func writeSummary(f *excelize.File, report *domain.RunReport) error {
	rows := [][]any{
		{"Run", report.RunID},
		{"Root", report.Root},
		{"Required", strings.Join(report.Required, ", ")},
		{"Desired", strings.Join(report.Desired, ", ")},
		{"Started", report.StartedAt.UTC().Format(time.RFC3339)},
		{"Finished", report.FinishedAt.UTC().Format(time.RFC3339)},
		{"Documents", report.Total()},
		{"Failures", len(report.Failures)},
	}
	for _, c := range domain.AllCategories() {
		rows = append(rows, []any{string(c), report.Counts[c]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary cell: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}

func writeDocuments(f *excelize.File, report *domain.RunReport) error {
	header := []any{"Document", "Category", "Moved", "Destination", "Errors"}
	if err := f.SetSheetRow(documentsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write documents header: %w", err)
	}

	for i, o := range report.Outcomes {
		messages := make([]string, 0, len(o.Failures))
		for _, failure := range o.Failures {
			messages = append(messages, fmt.Sprintf("%s: %s", failure.Kind, failure.Message))
		}
		row := []any{o.Document.Name, string(o.Category), o.Moved, o.Destination, strings.Join(messages, "; ")}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("documents cell: %w", err)
		}
		if err := f.SetSheetRow(documentsSheet, cell, &row); err != nil {
			return fmt.Errorf("write document row: %w", err)
		}
	}
	return nil
}
