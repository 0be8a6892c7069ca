package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

// FileStore owns the root folder: category folders, candidate listing and moves.
type FileStore interface {
	EnsureFolders(ctx context.Context, root string, names []string) ([]string, error)
	ListDocuments(ctx context.Context, root string, extensions []string) ([]domain.Document, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Move(ctx context.Context, src, dstDir string) (string, error)
}

// TextExtractor extracts plain text from a candidate document.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.Document) (string, error)
}

// RunRecorder persists finished run reports.
type RunRecorder interface {
	SaveRun(ctx context.Context, report *domain.RunReport) error
}

// RunPublisher announces finished runs to other services.
type RunPublisher interface {
	PublishRunCompleted(ctx context.Context, report *domain.RunReport) error
}

// SortRequestQueue hands a sort run to a background worker.
type SortRequestQueue interface {
	PublishSortRequest(ctx context.Context, req domain.SortRequest) error
}

// ReportWriter renders a run report next to the sorted folders.
type ReportWriter interface {
	WriteReport(ctx context.Context, report *domain.RunReport) (string, error)
}

// SortObserver receives per-document and per-run measurements. Extraction
// calls bracket one extraction each and may arrive concurrently; FinishDocument
// follows the routing of one document into its folder.
type SortObserver interface {
	StartExtraction()
	FinishExtraction(duration time.Duration, err error)
	FinishDocument(category domain.Category, duration time.Duration, failures []domain.Failure)
	FinishRun(report *domain.RunReport)
}
