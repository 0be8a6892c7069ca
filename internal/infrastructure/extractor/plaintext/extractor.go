package plaintext

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/core/ports"
)

type Extractor struct {
	storage ports.FileStore
}

func NewExtractor(storage ports.FileStore) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.Path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open "+doc.Name, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "read "+doc.Name, err)
	}

	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrExtraction, "decode "+doc.Name, fmt.Errorf("not valid utf-8 text"))
	}
	return strings.TrimSpace(string(raw)), nil
}
