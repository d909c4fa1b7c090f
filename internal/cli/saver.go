package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// maxNameAttempts bounds the numbered-suffix search in uniquePath.
const maxNameAttempts = 1000

// fileSaver writes a file outcome into dir without overwriting anything.
type fileSaver struct {
	dir     string
	path    string
	written int64
}

func (s *fileSaver) Save(ctx context.Context, file *domain.FilePayload) error {
	f, path, err := createUnique(s.dir, file.Filename)
	if err != nil {
		return err
	}

	n, err := io.Copy(f, file.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if file.Size > 0 && n != file.Size {
		os.Remove(path)
		return fmt.Errorf("write %s: got %d of %d bytes", filepath.Base(path), n, file.Size)
	}

	s.path, s.written = path, n
	return nil
}

// createUnique creates name in dir, or "name (1).ext", "name (2).ext" and so
// on when it already exists.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", candidate, err)
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
