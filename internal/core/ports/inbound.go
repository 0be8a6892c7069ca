package ports

import (
	"context"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

// ResumeSorter is the inbound contract for one classification run over a root folder.
type ResumeSorter interface {
	Sort(ctx context.Context, req domain.SortRequest) (*domain.RunReport, error)
}

// RunReader is the inbound read model for persisted run reports.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*domain.RunReport, error)
}
