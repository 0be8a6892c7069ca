package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

// Storage works directly on the local filesystem. Every operation takes the
// root folder explicitly so one Storage serves any number of runs.
type Storage struct{}

func New() *Storage {
	return &Storage{}
}

func (s *Storage) EnsureFolders(_ context.Context, root string, names []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.WrapError(domain.ErrFolderCreation, "stat root", err)
	}
	if !info.IsDir() {
		return nil, domain.WrapError(domain.ErrFolderCreation, "stat root", fmt.Errorf("%s is not a directory", root))
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
			return nil, domain.WrapError(domain.ErrFolderCreation, "create folder", fmt.Errorf("invalid folder name %q", name))
		}
		path := filepath.Join(root, name)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, domain.WrapError(domain.ErrFolderCreation, "create folder", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ListDocuments returns regular files directly under root whose extension
// matches one of extensions, compared case-insensitively. Output is sorted by name.
func (s *Storage) ListDocuments(_ context.Context, root string, extensions []string) ([]domain.Document, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read root dir: %w", err)
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	docs := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		docs = append(docs, domain.Document{
			Name: entry.Name(),
			Path: filepath.Join(root, entry.Name()),
			Ext:  ext,
			Size: info.Size(),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Move relocates src into dstDir keeping its base name. An existing file at
// the destination is never overwritten.
func (s *Storage) Move(_ context.Context, src, dstDir string) (string, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))

	if _, err := os.Lstat(dst); err == nil {
		return "", domain.WrapError(domain.ErrMove, "move "+filepath.Base(src), fmt.Errorf("destination exists: %s", dst))
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", domain.WrapError(domain.ErrMove, "move "+filepath.Base(src), err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", domain.WrapError(domain.ErrMove, "move "+filepath.Base(src), err)
	}

	if err := copyFile(src, dst); err != nil {
		return "", domain.WrapError(domain.ErrMove, "copy "+filepath.Base(src), err)
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return "", domain.WrapError(domain.ErrMove, "remove source "+filepath.Base(src), err)
	}
	return dst, nil
}

// copyFile creates dst exclusively and fills it from src. A dst that already
// exists is left untouched; a partial dst created here is removed on failure.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy data: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}
