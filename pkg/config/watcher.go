package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events editors emit on a single save.
const DefaultDebounce = 500 * time.Millisecond

// WatchConfig watches the given files and emits once per debounced burst of
// writes. The channel is closed when ctx is done or the watcher fails.
func WatchConfig(ctx context.Context, debounce time.Duration, files ...string) <-chan struct{} {
	reloadCh := make(chan struct{}, 1)
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create fsnotify watcher", "error", err)
		close(reloadCh)
		return reloadCh
	}

	// Watch parent directories: atomic saves replace the inode and drop file watches.
	wanted := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			slog.Warn("Could not resolve watch path", "file", file, "error", err)
			continue
		}
		wanted[absPath] = true
		dirs[filepath.Dir(absPath)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			slog.Warn("Could not watch directory", "dir", dir, "error", err)
		}
	}

	go func() {
		defer watcher.Close()
		defer close(reloadCh)

		var (
			timer   *time.Timer
			timerC  <-chan time.Time
			pending string
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timerC:
				timerC = nil
				slog.Info("Configuration change detected", "file", pending)
				select {
				case reloadCh <- struct{}{}:
				default:
				}
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !wanted[filepath.Clean(event.Name)] {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				pending = event.Name
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(debounce)
				}
				timerC = timer.C
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Config watcher error", "error", err)
			}
		}
	}()

	return reloadCh
}
