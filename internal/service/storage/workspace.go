package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidFrameName is returned for names that would escape the workspace.
var ErrInvalidFrameName = errors.New("invalid frame name")

// Workspace is the directory saved frames are written to. It is wiped and
// recreated by Reset at the start of every extraction.
type Workspace struct {
	dir string
	mu  sync.RWMutex
}

// NewWorkspace returns a Workspace rooted at dir. Nothing is touched on disk.
func NewWorkspace(dir string) *Workspace {
	return &Workspace{dir: dir}
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Reset deletes the directory with everything in it and creates it again empty.
func (w *Workspace) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace %s: %w", w.dir, err)
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create workspace %s: %w", w.dir, err)
	}
	return nil
}

// Save writes data under name.
func (w *Workspace) Save(name string, data []byte) error {
	path, err := w.Path(name)
	if err != nil {
		return err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save frame %s: %w", name, err)
	}
	return nil
}

// List returns file names in lexical order, at most limit of them (limit <= 0 means all).
// A missing directory lists as empty.
func (w *Workspace) List(limit int) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read workspace %s: %w", w.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Count returns how many files the workspace holds.
func (w *Workspace) Count() (int, error) {
	names, err := w.List(0)
	return len(names), err
}

// Path resolves name inside the workspace, rejecting anything with a separator or "..".
func (w *Workspace) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrameName, name)
	}
	return filepath.Join(w.dir, name), nil
}
