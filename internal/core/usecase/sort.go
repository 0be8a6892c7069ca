package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/core/ports"
)

type SortOptions struct {
	// FolderNames overrides the folder used for a category. Missing entries
	// fall back to the category label.
	FolderNames map[domain.Category]string
	Extensions  []string
	Workers     int
	Profiles    map[string]domain.KeywordProfile
	// AllowedBase, when set, confines roots to this directory tree.
	AllowedBase string

	Recorder     ports.RunRecorder
	Publisher    ports.RunPublisher
	ReportWriter ports.ReportWriter
	Observer     ports.SortObserver

	Now   func() time.Time
	NewID func() string
}

type SortUseCase struct {
	store     ports.FileStore
	extractor ports.TextExtractor
	opts      SortOptions
}

func NewSortUseCase(store ports.FileStore, extractor ports.TextExtractor, opts SortOptions) *SortUseCase {
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".pdf"}
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &SortUseCase{
		store:     store,
		extractor: extractor,
		opts:      opts,
	}
}

type extraction struct {
	text string
	err  error
}

func (uc *SortUseCase) Sort(ctx context.Context, req domain.SortRequest) (*domain.RunReport, error) {
	required, desired, err := uc.resolveKeywords(req)
	if err != nil {
		return nil, err
	}
	root, err := uc.resolveRoot(req.Root)
	if err != nil {
		return nil, err
	}

	folders, err := uc.prepareFolders(ctx, root)
	if err != nil {
		return nil, err
	}

	docs, err := uc.store.ListDocuments(ctx, root, uc.opts.Extensions)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	report := domain.NewRunReport(uc.opts.NewID(), root, required, desired, uc.opts.Now())
	slog.Info("sort_run_started",
		"run_id", report.RunID,
		"root", root,
		"documents", len(docs),
		"required", report.Required,
		"desired", report.Desired,
	)

	extracted := uc.extractAll(ctx, docs)

	// Moves run one document at a time so the category folders never see
	// interleaved partial writes.
	for i, doc := range docs {
		started := time.Now()
		outcome := uc.route(ctx, doc, extracted[i], required, desired, folders)
		uc.opts.Observer.FinishDocument(outcome.Category, time.Since(started), outcome.Failures)
		report.Add(outcome)
	}

	report.FinishedAt = uc.opts.Now()
	uc.opts.Observer.FinishRun(report)
	slog.Info("sort_run_completed",
		"run_id", report.RunID,
		"documents", report.Total(),
		"failures", len(report.Failures),
		"minimum", report.Counts[domain.CategoryMinimum],
		"unicorn", report.Counts[domain.CategoryUnicorn],
		"discarded", report.Counts[domain.CategoryDiscarded],
		"duration_ms", float64(report.Duration().Microseconds())/1000.0,
	)

	uc.dispatch(ctx, report)
	return report, nil
}

func (uc *SortUseCase) resolveKeywords(req domain.SortRequest) (domain.KeywordSet, domain.KeywordSet, error) {
	requiredRaw, desiredRaw := req.Required, req.Desired

	if name := strings.TrimSpace(req.Profile); name != "" {
		profile, ok := uc.opts.Profiles[name]
		if !ok {
			return domain.KeywordSet{}, domain.KeywordSet{}, domain.WrapError(
				domain.ErrInvalidInput, "resolve keywords", fmt.Errorf("unknown profile %q", name),
			)
		}
		if strings.TrimSpace(requiredRaw) == "" {
			requiredRaw = profile.Required
		}
		if strings.TrimSpace(desiredRaw) == "" {
			desiredRaw = profile.Desired
		}
	}

	required := domain.ParseKeywords(requiredRaw)
	if required.Empty() {
		return domain.KeywordSet{}, domain.KeywordSet{}, domain.WrapError(
			domain.ErrInvalidInput, "resolve keywords", errors.New("at least one required keyword is needed"),
		)
	}
	return required, domain.ParseKeywords(desiredRaw), nil
}

func (uc *SortUseCase) resolveRoot(raw string) (string, error) {
	root := strings.TrimSpace(raw)
	if root == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve root", errors.New("root folder is required"))
	}
	root = filepath.Clean(root)
	if uc.opts.AllowedBase == "" {
		return root, nil
	}

	base, err := filepath.Abs(uc.opts.AllowedBase)
	if err != nil {
		return "", fmt.Errorf("resolve allowed base: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve root", err)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve root", fmt.Errorf("%s is outside %s", root, base))
	}
	return abs, nil
}

func (uc *SortUseCase) prepareFolders(ctx context.Context, root string) (map[domain.Category]string, error) {
	if err := domain.CheckFolderNames(uc.opts.FolderNames); err != nil {
		return nil, domain.WrapError(domain.ErrFolderCreation, "prepare folders", err)
	}

	categories := domain.AllCategories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = domain.FolderName(uc.opts.FolderNames, c)
	}

	paths, err := uc.store.EnsureFolders(ctx, root, names)
	if err != nil {
		if domain.IsKind(err, domain.ErrFolderCreation) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrFolderCreation, "prepare folders", err)
	}
	if len(paths) != len(categories) {
		return nil, domain.WrapError(
			domain.ErrFolderCreation,
			"prepare folders",
			fmt.Errorf("folders/categories mismatch: %d/%d", len(paths), len(categories)),
		)
	}

	folders := make(map[domain.Category]string, len(categories))
	for i, c := range categories {
		folders[c] = paths[i]
	}
	return folders, nil
}

// extractAll reads every document with at most Workers extractions in flight.
// Extraction errors are kept per document and never stop the group.
func (uc *SortUseCase) extractAll(ctx context.Context, docs []domain.Document) []extraction {
	out := make([]extraction, len(docs))

	var g errgroup.Group
	g.SetLimit(uc.opts.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			uc.opts.Observer.StartExtraction()
			started := time.Now()
			text, err := uc.extractText(ctx, doc)
			uc.opts.Observer.FinishExtraction(time.Since(started), err)
			out[i] = extraction{text: text, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (uc *SortUseCase) extractText(ctx context.Context, doc domain.Document) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		if domain.IsKind(err, domain.ErrExtraction) {
			return "", err
		}
		return "", domain.WrapError(domain.ErrExtraction, "extract "+doc.Name, err)
	}
	return domain.NormalizeText(text), nil
}

func (uc *SortUseCase) route(
	ctx context.Context,
	doc domain.Document,
	ext extraction,
	required, desired domain.KeywordSet,
	folders map[domain.Category]string,
) domain.Outcome {
	outcome := domain.Outcome{
		Document: doc,
		Category: domain.CategoryDiscarded,
	}

	if ext.err != nil {
		outcome.Failures = append(outcome.Failures, uc.failure(doc, ext.err))
	} else {
		outcome.Category = domain.Classify(ext.text, required, desired)
	}

	dst, err := uc.store.Move(ctx, doc.Path, folders[outcome.Category])
	if err != nil {
		if !domain.IsKind(err, domain.ErrMove) {
			err = domain.WrapError(domain.ErrMove, "move "+doc.Name, err)
		}
		outcome.Failures = append(outcome.Failures, uc.failure(doc, err))
		return outcome
	}

	outcome.Destination = dst
	outcome.Moved = true
	return outcome
}

func (uc *SortUseCase) failure(doc domain.Document, err error) domain.Failure {
	kind := domain.KindOf(err)
	slog.Warn("sort_document_failed",
		"document", doc.Name,
		"kind", string(kind),
		"error", err,
	)
	return domain.Failure{
		Document: doc.Name,
		Kind:     kind,
		Message:  err.Error(),
	}
}

// dispatch hands the finished report to the optional sinks. Sink errors are
// logged and never alter the report returned to the caller.
func (uc *SortUseCase) dispatch(ctx context.Context, report *domain.RunReport) {
	if uc.opts.ReportWriter != nil {
		path, err := uc.opts.ReportWriter.WriteReport(ctx, report)
		if err != nil {
			slog.Warn("sort_report_write_failed", "run_id", report.RunID, "error", err)
		} else {
			slog.Info("sort_report_written", "run_id", report.RunID, "path", path)
		}
	}
	if uc.opts.Recorder != nil {
		if err := uc.opts.Recorder.SaveRun(ctx, report); err != nil {
			slog.Warn("sort_run_save_failed", "run_id", report.RunID, "error", err)
		}
	}
	if uc.opts.Publisher != nil {
		if err := uc.opts.Publisher.PublishRunCompleted(ctx, report); err != nil {
			slog.Warn("sort_run_publish_failed", "run_id", report.RunID, "error", err)
		}
	}
}

type noopObserver struct{}

func (noopObserver) StartExtraction() {}

func (noopObserver) FinishExtraction(time.Duration, error) {}

func (noopObserver) FinishDocument(domain.Category, time.Duration, []domain.Failure) {}

func (noopObserver) FinishRun(*domain.RunReport) {}
