package collection

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mklint/speeddial/internal/checksum"
	"github.com/mklint/speeddial/internal/storage"
)

// Watch observes the snapshot file of a file-backed store and reloads the
// live state when another process rewrites it. Our own writes are ignored
// by comparing the file checksum against the last persisted payload.
// Events are debounced because editors and atomic renames produce bursts.
func Watch(ctx context.Context, store *Store, file *storage.File, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: atomic writes replace the file by rename, which
	// would silently detach a watch on the file itself.
	dir := filepath.Dir(file.Path())
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("snapshot", file.Path()))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			reloadSnapshot(store, file, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != file.Path() {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reloadSnapshot(store *Store, file *storage.File, logger *slog.Logger) {
	data, err := file.Load()
	if err != nil {
		logger.Warn("watcher: snapshot read failed", slog.String("error", err.Error()))
		return
	}
	if checksum.Sum(data) == store.LastSavedChecksum() {
		// Our own write landing on disk.
		return
	}
	if err := store.Reload(data); err != nil {
		logger.Warn("watcher: external snapshot rejected, keeping live state",
			slog.String("error", err.Error()))
		return
	}
	logger.Info("watcher: reloaded external snapshot")
}
