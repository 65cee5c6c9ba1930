package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates the read cache whenever the token file is written,
// replaced or removed by anyone, including another taskdeck process.
// It watches the directory rather than the file so atomic renames are seen.
// The watcher stops when ctx is done.
func (s *FileStore) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storage: create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("storage: watch %s: %w", filepath.Dir(s.path), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					s.log.Debug("token file changed", "op", event.Op.String())
					s.Invalidate()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("token file watcher error", "error", err)
			}
		}
	}()
	return nil
}
