package modelstore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/skillsenselab/voicekit/logger"
)

// Item describes one stored artifact. ID is the path relative to the store
// root, so it is stable across listings.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Path      string `json:"path"`
}

// Store manages model artifacts under a root directory.
type Store struct {
	root string
	log  *logger.Logger
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("modelstore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("modelstore: create root: %w", err)
	}
	return &Store{root: abs, log: logger.Get("modelstore")}, nil
}

// Root returns the absolute store root directory.
func (s *Store) Root() string { return s.root }

// List returns every artifact under the root, sorted by ID.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	var items []Item
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		items = append(items, Item{
			ID:        filepath.ToSlash(rel),
			Name:      d.Name(),
			SizeBytes: info.Size(),
			Path:      path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("modelstore: list: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Size returns the total size in bytes of all artifacts.
func (s *Store) Size(ctx context.Context) (int64, error) {
	items, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, it := range items {
		total += it.SizeBytes
	}
	return total, nil
}

// Exists reports whether the artifact with the given ID is present.
func (s *Store) Exists(id string) bool {
	path, err := s.resolve(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Put writes an artifact from r under the given ID, creating parent
// directories as needed.
func (s *Store) Put(ctx context.Context, id string, r io.Reader) error {
	path, err := s.resolve(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("modelstore: create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("modelstore: create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("modelstore: write file: %w", err)
	}
	s.log.Debug("artifact stored", map[string]interface{}{logger.FieldDataItem: id})
	return nil
}

// Delete removes the artifact with the given ID. Missing artifacts are not
// an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	path, err := s.resolve(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("modelstore: delete %s: %w", id, err)
	}
	return nil
}

// DeleteAll removes every artifact and recreates the empty root.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("modelstore: clear: %w", err)
	}
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return fmt.Errorf("modelstore: recreate root: %w", err)
	}
	s.log.Info("store cleared", map[string]interface{}{"root": s.root})
	return nil
}

// resolve maps an artifact ID to an absolute path, rejecting escapes from
// the store root.
func (s *Store) resolve(id string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(id))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("modelstore: invalid artifact id %q", id)
	}
	return filepath.Join(s.root, cleaned), nil
}
