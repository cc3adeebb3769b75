// Package storage defines the snapshot persistence abstraction and its
// file, key/value, and SQLite backends.
package storage

import "errors"

// ErrNoSnapshot is returned by Load when the backend holds no snapshot yet.
// Callers fall back to seed data rather than failing.
var ErrNoSnapshot = errors.New("storage: no snapshot")

// Provider is the interface the collection store persists through. Backends
// store opaque bytes; envelope encoding lives in the snapshot package.
type Provider interface {
	// Load returns the stored snapshot bytes, or ErrNoSnapshot.
	Load() ([]byte, error)
	// Save durably replaces the stored snapshot.
	Save(data []byte) error
}
