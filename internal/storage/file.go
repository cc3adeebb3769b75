package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File implements Provider backed by a single JSON file on the local file
// system. Writes are atomic: tmp file → fsync → rename.
type File struct {
	path string // absolute path to the snapshot file
}

// NewFile creates a File provider for the given snapshot path. The parent
// directory is created if missing.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: snapshot path is a directory: %s", abs)
	}
	return &File{path: abs}, nil
}

// Path returns the absolute snapshot file path. The external-change watcher
// uses it to register with fsnotify.
func (f *File) Path() string {
	return f.path
}

// Load reads the snapshot file.
func (f *File) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	return data, nil
}

// Save atomically replaces the snapshot file.
func (f *File) Save(data []byte) error {
	dir := filepath.Dir(f.path)

	tmp, err := os.CreateTemp(dir, ".speeddial-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
