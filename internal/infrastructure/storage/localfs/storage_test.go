package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestEnsureFoldersIsIdempotent(t *testing.T) {
	root := t.TempDir()
	s := New()
	names := []string{"MinimumCandidate", "PlusCandidate", "UnicornCandidate", "Discarded"}

	first, err := s.EnsureFolders(context.Background(), root, names)
	if err != nil {
		t.Fatalf("first EnsureFolders() error = %v", err)
	}
	second, err := s.EnsureFolders(context.Background(), root, names)
	if err != nil {
		t.Fatalf("second EnsureFolders() error = %v", err)
	}
	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("expected 4 folders, got %d and %d", len(first), len(second))
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected exactly 4 entries under root, got %d", len(entries))
	}
}

func TestEnsureFoldersFailsForMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	_, err := New().EnsureFolders(context.Background(), root, []string{"Discarded"})
	if !domain.IsKind(err, domain.ErrFolderCreation) {
		t.Fatalf("expected ErrFolderCreation, got %v", err)
	}
	if _, statErr := os.Stat(root); !os.IsNotExist(statErr) {
		t.Fatalf("missing root must not be created")
	}
}

func TestEnsureFoldersFailsForFileRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	writeFile(t, root, "x")

	_, err := New().EnsureFolders(context.Background(), root, []string{"Discarded"})
	if !domain.IsKind(err, domain.ErrFolderCreation) {
		t.Fatalf("expected ErrFolderCreation, got %v", err)
	}
}

func TestEnsureFoldersRejectsNestedNames(t *testing.T) {
	_, err := New().EnsureFolders(context.Background(), t.TempDir(), []string{"../escape"})
	if !domain.IsKind(err, domain.ErrFolderCreation) {
		t.Fatalf("expected ErrFolderCreation, got %v", err)
	}
}

func TestListDocumentsFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.pdf"), "b")
	writeFile(t, filepath.Join(root, "A.PDF"), "a")
	writeFile(t, filepath.Join(root, "notes.txt"), "n")
	if err := os.Mkdir(filepath.Join(root, "nested.pdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(root, "sub", "c.pdf"), "c")

	docs, err := New().ListDocuments(context.Background(), root, []string{"pdf"})
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %+v", docs)
	}
	if docs[0].Name != "A.PDF" || docs[1].Name != "b.pdf" {
		t.Fatalf("unexpected order: %+v", docs)
	}
	if docs[0].Ext != ".pdf" {
		t.Fatalf("expected normalized extension, got %q", docs[0].Ext)
	}
}

func TestMoveRelocatesFile(t *testing.T) {
	root := t.TempDir()
	dstDir := filepath.Join(root, "Discarded")
	if err := os.Mkdir(dstDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(root, "a.pdf")
	writeFile(t, src, "payload")

	dst, err := New().Move(context.Background(), src, dstDir)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if dst != filepath.Join(dstDir, "a.pdf") {
		t.Fatalf("unexpected destination %s", dst)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source must not exist after move")
	}
	raw, err := os.ReadFile(dst)
	if err != nil || string(raw) != "payload" {
		t.Fatalf("unexpected destination content %q, err=%v", raw, err)
	}
}

func TestMoveRefusesToOverwrite(t *testing.T) {
	root := t.TempDir()
	dstDir := filepath.Join(root, "Discarded")
	if err := os.Mkdir(dstDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(root, "a.pdf")
	writeFile(t, src, "new")
	writeFile(t, filepath.Join(dstDir, "a.pdf"), "old")

	_, err := New().Move(context.Background(), src, dstDir)
	if !domain.IsKind(err, domain.ErrMove) {
		t.Fatalf("expected ErrMove, got %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source must stay in place: %v", err)
	}
	raw, _ := os.ReadFile(filepath.Join(dstDir, "a.pdf"))
	if string(raw) != "old" {
		t.Fatalf("existing destination was overwritten")
	}
}

func TestCopyFileLeavesExistingDestinationAlone(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	dst := filepath.Join(dir, "taken.pdf")
	writeFile(t, src, "new")
	writeFile(t, dst, "someone else's")

	if err := copyFile(src, dst); err == nil {
		t.Fatalf("expected error when destination appears before the copy")
	}
	raw, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("existing destination must survive: %v", err)
	}
	if string(raw) != "someone else's" {
		t.Fatalf("existing destination was modified: %q", raw)
	}
}

func TestCopyFileCopiesIntoNewDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	dst := filepath.Join(dir, "b.pdf")
	writeFile(t, src, "payload")

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile() error = %v", err)
	}
	raw, err := os.ReadFile(dst)
	if err != nil || string(raw) != "payload" {
		t.Fatalf("unexpected destination content %q, err=%v", raw, err)
	}
}
