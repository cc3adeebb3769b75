package internal

import (
	"fmt"

	"github.com/mklint/speeddial/internal/storage"
)

// NewProvider builds the snapshot persistence backend selected by cfg.
// The second return value is non-nil only for the file backend, whose
// snapshot file can additionally be watched for external edits.
func NewProvider(cfg *Config) (storage.Provider, *storage.File, error) {
	switch cfg.Store.Backend {
	case BackendFile:
		file, err := storage.NewFile(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init file storage: %w", err)
		}
		return file, file, nil
	case BackendDiskv:
		dv, err := storage.NewDiskv(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init diskv storage: %w", err)
		}
		return dv, nil, nil
	case BackendSQLite:
		db, err := storage.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite storage: %w", err)
		}
		return db, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
