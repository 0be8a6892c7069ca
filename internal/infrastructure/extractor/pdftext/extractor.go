package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/core/ports"
)

// Extractor concatenates the plain text of every page of a PDF document.
type Extractor struct {
	storage ports.FileStore
}

func NewExtractor(storage ports.FileStore) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc domain.Document) (text string, err error) {
	reader, err := e.storage.Open(ctx, doc.Path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open "+doc.Name, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "read "+doc.Name, err)
	}

	// The pdf package panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrExtraction, "parse "+doc.Name, fmt.Errorf("malformed pdf: %v", r))
		}
	}()

	text, err = extractPages(raw)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "parse "+doc.Name, err)
	}
	return text, nil
}

func extractPages(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("empty file")
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}
