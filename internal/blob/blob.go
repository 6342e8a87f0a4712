// Package blob stores uploaded files on disk, addressed by generated
// filenames. Uploads are staged: nothing staged survives unless the caller
// commits, which keeps failed requests from leaving orphaned files behind.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBadName rejects filenames that would escape the storage directory.
var ErrBadName = errors.New("invalid blob name")

// Store keeps blobs as flat files under a single directory.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the storage directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the blob and returns its generated filename.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitize(originalName))

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}
	return name, nil
}

// Remove deletes a blob. Removing a missing blob is not an error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// Open returns a reader over a stored blob.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", ErrBadName
	}
	return filepath.Join(s.dir, name), nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

// Upload stages files written during one request. Discard removes everything
// staged unless Commit ran first, so it is safe to defer unconditionally.
type Upload struct {
	store     *Store
	names     []string
	committed bool
}

// Begin starts a staged upload.
func (s *Store) Begin() *Upload {
	return &Upload{store: s}
}

// Add saves a blob under the staged upload and returns its filename.
func (u *Upload) Add(r io.Reader, originalName string) (string, error) {
	name, err := u.store.Save(r, originalName)
	if err != nil {
		return "", err
	}
	u.names = append(u.names, name)
	return name, nil
}

// Commit keeps all staged files.
func (u *Upload) Commit() {
	u.committed = true
}

// Discard removes staged files unless the upload was committed.
func (u *Upload) Discard() {
	if u.committed {
		return
	}
	for _, name := range u.names {
		_ = u.store.Remove(name)
	}
	u.names = nil
}
