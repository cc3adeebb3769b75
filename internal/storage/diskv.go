package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

const snapshotKey = "snapshot.json"

// Diskv implements Provider on top of a diskv key/value store. The whole
// snapshot lives under a single key; diskv handles the on-disk layout.
type Diskv struct {
	d *diskv.Diskv
}

// NewDiskv creates a Diskv provider rooted at basePath.
func NewDiskv(basePath string) (*Diskv, error) {
	if basePath == "" {
		return nil, errors.New("storage: diskv base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure diskv base path: %w", err)
	}
	return &Diskv{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return nil },
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

// Load reads the snapshot value.
func (s *Diskv) Load() ([]byte, error) {
	if !s.d.Has(snapshotKey) {
		return nil, ErrNoSnapshot
	}
	data, err := s.d.Read(snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("storage: diskv read: %w", err)
	}
	return data, nil
}

// Save writes the snapshot value.
func (s *Diskv) Save(data []byte) error {
	if err := s.d.Write(snapshotKey, data); err != nil {
		return fmt.Errorf("storage: diskv write: %w", err)
	}
	return nil
}
