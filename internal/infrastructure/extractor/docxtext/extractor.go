package docxtext

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

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
	if len(raw) == 0 {
		return "", domain.WrapError(domain.ErrExtraction, "parse "+doc.Name, errors.New("empty file"))
	}

	parsed, err := docx.ReadDocxFromMemory(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "parse "+doc.Name, err)
	}
	defer parsed.Close()

	text, err := stripMarkup(parsed.Editable().GetContent())
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "decode "+doc.Name, err)
	}
	return text, nil
}

// stripMarkup keeps the text runs of word/document.xml, one line per paragraph.
func stripMarkup(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
