package extractor

import (
	"context"
	"reflect"
	"testing"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

type staticExtractor string

func (s staticExtractor) Extract(context.Context, domain.Document) (string, error) {
	return string(s), nil
}

func TestRouterDispatchesByExtension(t *testing.T) {
	r := NewRouter().
		Register("pdf", staticExtractor("from pdf")).
		Register(".DOCX", staticExtractor("from docx"))

	got, err := r.Extract(context.Background(), domain.Document{Name: "a.PDF", Ext: ".PDF"})
	if err != nil || got != "from pdf" {
		t.Fatalf("Extract() = %q, %v", got, err)
	}
	got, err = r.Extract(context.Background(), domain.Document{Name: "a.docx", Ext: ".docx"})
	if err != nil || got != "from docx" {
		t.Fatalf("Extract() = %q, %v", got, err)
	}

	if want := []string{".docx", ".pdf"}; !reflect.DeepEqual(r.Extensions(), want) {
		t.Fatalf("Extensions() = %v, want %v", r.Extensions(), want)
	}
	if !r.Supports("Pdf") || r.Supports(".txt") {
		t.Fatalf("unexpected Supports() result")
	}
}

func TestRouterUnknownExtensionIsExtractionError(t *testing.T) {
	_, err := NewRouter().Extract(context.Background(), domain.Document{Name: "a.odt", Ext: ".odt"})
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}
