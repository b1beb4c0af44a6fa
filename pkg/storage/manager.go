package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"postarchive/pkg/errors"
)

const (
	dirMode  fs.FileMode = 0755
	fileMode fs.FileMode = 0644
)

// EnsureDir creates path and any missing parents. An existing directory is a
// no-op, including one created concurrently by another goroutine.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return &errors.Error{
			Kind: errors.KindDirectoryCreate,
			Op:   "ensure dir",
			Path: path,
			Err:  fmt.Errorf("path exists and is not a directory"),
		}
	}
	if !os.IsNotExist(err) {
		return &errors.Error{Kind: errors.KindDirectoryCreate, Op: "stat", Path: path, Err: err}
	}

	// MkdirAll returns nil when it loses a creation race to another caller
	if err := os.MkdirAll(path, dirMode); err != nil {
		return &errors.Error{Kind: errors.KindDirectoryCreate, Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// WriteFile replaces path with data using a temporary file and a rename, so
// readers never observe a half written document. Existing files are overwritten.
func WriteFile(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return &errors.Error{Kind: errors.KindFileWrite, Op: "create temp", Path: path, Err: err}
	}
	tempPath := tmp.Name()

	_, err = tmp.Write(data)
	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tempPath)
		return &errors.Error{Kind: errors.KindFileWrite, Op: "write", Path: path, Err: err}
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return &errors.Error{Kind: errors.KindFileWrite, Op: "close", Path: path, Err: closeErr}
	}

	if err := os.Chmod(tempPath, fileMode); err != nil {
		os.Remove(tempPath)
		return &errors.Error{Kind: errors.KindFileWrite, Op: "chmod", Path: path, Err: err}
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return &errors.Error{Kind: errors.KindFileWrite, Op: "rename", Path: path, Err: err}
	}

	return nil
}

// CreateFile opens path for streaming, truncating any existing file
func CreateFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, &errors.Error{Kind: errors.KindFileWrite, Op: "create", Path: path, Err: err}
	}
	return f, nil
}

// Manager wraps the filesystem operations for one archive root and keeps
// track of what a run has written.
type Manager struct {
	root    string
	written map[string]bool
	dirs    map[string]bool
	mu      sync.RWMutex
}

// NewManager creates a storage manager rooted at root, creating it if needed
func NewManager(root string) (*Manager, error) {
	if err := EnsureDir(root); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{
		root:    root,
		written: make(map[string]bool),
		dirs:    make(map[string]bool),
	}, nil
}

// EnsureDir creates dir once per manager; later calls for the same path are
// answered from memory.
func (m *Manager) EnsureDir(dir string) error {
	m.mu.RLock()
	known := m.dirs[dir]
	m.mu.RUnlock()
	if known {
		return nil
	}

	if err := EnsureDir(dir); err != nil {
		return err
	}

	m.mu.Lock()
	m.dirs[dir] = true
	m.mu.Unlock()
	return nil
}

// WriteFile writes a content file and records it
func (m *Manager) WriteFile(path string, data []byte) error {
	if err := WriteFile(path, data); err != nil {
		return err
	}
	m.mu.Lock()
	m.written[path] = true
	m.mu.Unlock()
	return nil
}

// CreateFile opens a streaming destination and records it
func (m *Manager) CreateFile(path string) (*os.File, error) {
	f, err := CreateFile(path)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.written[path] = true
	m.mu.Unlock()
	return f, nil
}

// Root returns the archive root directory
func (m *Manager) Root() string {
	return m.root
}

// WrittenCount returns the number of distinct files written
func (m *Manager) WrittenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.written)
}
