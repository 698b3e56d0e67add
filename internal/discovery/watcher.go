package discovery

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/agentgrid/internal/ctxlog"
)

// Watch blocks watching the registry's discovery paths and triggers a
// forced re-discovery whenever a manifest file is created, written, renamed
// or removed. It returns when the context is cancelled. Rescans run on the
// watcher goroutine through the rediscover callback (nil means a direct
// forced Discover), so callers can route them through their own
// synchronization; failures are logged and the watch continues.
func (e *Engine) Watch(ctx context.Context, rediscover func(context.Context) error) error {
	logger := ctxlog.FromContext(ctx)

	if rediscover == nil {
		rediscover = func(ctx context.Context) error { return e.Discover(ctx, true) }
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range e.reg.Paths() {
		if err := watcher.Add(dir); err != nil {
			logger.Error("Failed to watch discovery path.", "path", dir, "error", err)
			continue
		}
		logger.Debug("Watching discovery path for manifest changes.", "path", dir)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Manifest watcher stopping.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != manifestExt {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Info("Manifest change detected, rediscovering.", "file", event.Name, "op", event.Op.String())
			if err := rediscover(ctx); err != nil {
				logger.Error("Rediscovery after manifest change failed.", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Manifest watcher error.", "error", err)
		}
	}
}
