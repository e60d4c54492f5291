// Package imagestore keeps product photos uploaded through the admin
// panel on local disk.
package imagestore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes photos into a single flat directory. File names are
// generated, so uploads never collide or escape the directory.
type Store struct {
	dir string
	log *slog.Logger
}

// New creates the backing directory if needed and returns the store.
func New(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if dir == "" {
		return nil, fmt.Errorf("image directory is not configured")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}

	return &Store{dir: dir, log: log}, nil
}

// Save streams the photo to disk under a generated name and returns the
// stored path.
func (s *Store) Save(r io.Reader) (string, error) {
	name := uuid.NewString() + ".jpg"
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write image file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close image file: %w", err)
	}

	s.log.Debug("image stored", slog.String("path", path))

	return path, nil
}

// Remove deletes a stored photo. Paths outside the store directory are
// refused, a missing file is not an error.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}

	absDir, err := filepath.Abs(s.dir)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the image directory", path)
	}

	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
