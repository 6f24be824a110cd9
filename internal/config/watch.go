package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// WatchCategories monitors the category table file at path and calls
// onChange with the newly loaded table each time the file is written.
// It runs until ctx is cancelled.
//
// If a reload fails (e.g. invalid YAML or a broken table), the error is
// logged and the previous table remains active; onChange is not called.
func WatchCategories(ctx context.Context, log *slog.Logger, path string, onChange func(*CategoryTable)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.InfoContext(ctx, "watching category table", slog.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only reload on write or create events. Editors often write via
			// rename (atomic save), so also catch fsnotify.Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			table, err := LoadCategories(path)
			if err != nil {
				log.ErrorContext(ctx, "category table reload failed, keeping previous table",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
				continue
			}

			log.InfoContext(ctx, "category table reloaded",
				slog.String("path", path),
				slog.Int("categories", len(table.All())),
			)
			onChange(table)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.ErrorContext(ctx, "category table watcher error", slog.String("error", err.Error()))
		}
	}
}
