package collection

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mklint/speeddial/internal/models"
	"github.com/mklint/speeddial/internal/snapshot"
	"github.com/mklint/speeddial/internal/storage"
)

func watchTestEnv(t *testing.T) (*Store, *storage.File, *slog.Logger) {
	t.Helper()
	file, err := storage.NewFile(filepath.Join(t.TempDir(), "snapshot.json"))
	if err != nil {
		t.Fatal(err)
	}
	store := Open(file)
	t.Cleanup(store.Close)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return store, file, logger
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func externalSnapshot(t *testing.T, names ...string) []byte {
	t.Helper()
	var websites []models.Website
	for i, name := range names {
		websites = append(websites, models.Website{
			ID:       name,
			Name:     name,
			URL:      "https://" + name + ".org",
			Position: models.Position{Page: 0, Order: i},
		})
	}
	data, err := snapshot.Encode(snapshot.Build(websites, nil, models.DefaultSettings()))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestWatch_ExternalEditReloads(t *testing.T) {
	store, file, logger := watchTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	store.notify = func(kind, id string) {
		mu.Lock()
		events = append(events, kind)
		mu.Unlock()
	}

	go func() { _ = Watch(ctx, store, file, logger) }()
	time.Sleep(100 * time.Millisecond)

	// Another process rewrites the snapshot file.
	if err := os.WriteFile(file.Path(), externalSnapshot(t, "external"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		sites := store.Websites()
		return len(sites) == 1 && sites[0].Name == "external"
	}, "external snapshot edit not reloaded")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "collection.reloaded" {
				return true
			}
		}
		return false
	}, "expected collection.reloaded callback")
}

func TestWatch_InvalidSnapshotKeepsState(t *testing.T) {
	store, file, logger := watchTestEnv(t)
	before := store.Websites()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = Watch(ctx, store, file, logger) }()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(file.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Give the debounced reload time to fire and be rejected.
	time.Sleep(600 * time.Millisecond)

	after := store.Websites()
	if len(after) != len(before) {
		t.Errorf("website count changed: %d -> %d", len(before), len(after))
	}
}

func TestWatch_IgnoresOwnWrites(t *testing.T) {
	store, file, logger := watchTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	reloads := 0
	store.notify = func(kind, id string) {
		if kind == "collection.reloaded" {
			mu.Lock()
			reloads++
			mu.Unlock()
		}
	}

	go func() { _ = Watch(ctx, store, file, logger) }()
	time.Sleep(100 * time.Millisecond)

	if _, err := store.AddWebsite(WebsiteInput{Name: "own", URL: "own.org"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	time.Sleep(600 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if reloads != 0 {
		t.Errorf("own persistence write triggered %d reloads", reloads)
	}
}
