package docxtext

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/storage/localfs"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Backend engineer: Go &amp; Python</w:t></w:r></w:p>
<w:p><w:r><w:t>Kubernetes</w:t></w:r></w:p>
</w:body>
</w:document>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relsXML,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func writeDoc(t *testing.T, name string, raw []byte) domain.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return domain.Document{Name: name, Path: path, Ext: ".docx"}
}

func TestExtractReturnsParagraphText(t *testing.T) {
	doc := writeDoc(t, "cv.docx", buildDocx(t))

	text, err := NewExtractor(localfs.New()).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Backend engineer: Go & Python\nKubernetes" {
		t.Fatalf("unexpected text %q", text)
	}
	if strings.Contains(text, "w:t") {
		t.Fatalf("markup leaked into text: %q", text)
	}
}

func TestExtractRejectsCorruptInput(t *testing.T) {
	doc := writeDoc(t, "broken.docx", []byte("PK not really a zip"))

	_, err := NewExtractor(localfs.New()).Extract(context.Background(), doc)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestStripMarkupHandlesTabs(t *testing.T) {
	got, err := stripMarkup(`<w:p xmlns:w="x"><w:r><w:t>Go</w:t><w:tab/><w:t>SQL</w:t></w:r></w:p>`)
	if err != nil {
		t.Fatalf("stripMarkup() error = %v", err)
	}
	if got != "Go\tSQL" {
		t.Fatalf("unexpected text %q", got)
	}
}
