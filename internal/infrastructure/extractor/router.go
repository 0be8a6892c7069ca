package extractor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/core/ports"
)

// Router dispatches extraction to the extractor registered for a document's extension.
type Router struct {
	byExt map[string]ports.TextExtractor
}

func NewRouter() *Router {
	return &Router{byExt: make(map[string]ports.TextExtractor)}
}

// Register binds ext (with or without leading dot, any case) to e.
func (r *Router) Register(ext string, e ports.TextExtractor) *Router {
	r.byExt[normalizeExt(ext)] = e
	return r
}

func (r *Router) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (r *Router) Supports(ext string) bool {
	_, ok := r.byExt[normalizeExt(ext)]
	return ok
}

func (r *Router) Extract(ctx context.Context, doc domain.Document) (string, error) {
	e, ok := r.byExt[normalizeExt(doc.Ext)]
	if !ok {
		return "", domain.WrapError(domain.ErrExtraction, "extract "+doc.Name, fmt.Errorf("no extractor for %q", doc.Ext))
	}
	return e.Extract(ctx, doc)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
