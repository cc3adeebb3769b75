package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// providers builds one of each backend in a temp location.
func providers(t *testing.T) map[string]Provider {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "snapshot.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	kv, err := NewDiskv(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("NewDiskv: %v", err)
	}

	db, err := NewSQLite(filepath.Join(t.TempDir(), "snap.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]Provider{"file": file, "diskv": kv, "sqlite": db}
}

func TestLoadBeforeSave(t *testing.T) {
	for name, p := range providers(t) {
		if _, err := p.Load(); !errors.Is(err, ErrNoSnapshot) {
			t.Errorf("%s: Load before Save = %v, want ErrNoSnapshot", name, err)
		}
	}
}

func TestSaveThenLoad(t *testing.T) {
	payload := []byte(`{"version":"2"}`)
	for name, p := range providers(t) {
		if err := p.Save(payload); err != nil {
			t.Fatalf("%s: Save: %v", name, err)
		}
		got, err := p.Load()
		if err != nil {
			t.Fatalf("%s: Load: %v", name, err)
		}
		if string(got) != string(payload) {
			t.Errorf("%s: Load = %q, want %q", name, got, payload)
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	for name, p := range providers(t) {
		_ = p.Save([]byte("v1"))
		if err := p.Save([]byte("v2")); err != nil {
			t.Fatalf("%s: second Save: %v", name, err)
		}
		got, _ := p.Load()
		if string(got) != "v2" {
			t.Errorf("%s: Load = %q, want v2", name, got)
		}
	}
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "snapshot.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := f.Save([]byte("data")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, ".speeddial-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFileCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "snapshot.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := f.Save([]byte("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestNewFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFile(dir); err == nil {
		t.Error("expected error when path is a directory")
	}
}

func TestNewDiskvRequiresBasePath(t *testing.T) {
	if _, err := NewDiskv(""); err == nil {
		t.Error("expected error for empty base path")
	}
}

func TestFilePathIsAbsolute(t *testing.T) {
	wd, _ := os.Getwd()
	f, err := NewFile("rel-snapshot.json")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	t.Cleanup(func() { os.Remove(f.Path()) })
	if !filepath.IsAbs(f.Path()) {
		t.Errorf("Path() = %q, want absolute", f.Path())
	}
	if filepath.Dir(f.Path()) != wd {
		t.Errorf("Path() dir = %q, want %q", filepath.Dir(f.Path()), wd)
	}
}
