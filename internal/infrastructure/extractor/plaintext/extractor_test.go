package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/storage/localfs"
)

func TestExtractTrimsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(path, []byte("  Go, SQL  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	text, err := NewExtractor(localfs.New()).Extract(context.Background(), domain.Document{Name: "cv.txt", Path: path})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Go, SQL" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewExtractor(localfs.New()).Extract(context.Background(), domain.Document{Name: "cv.txt", Path: path})
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}
