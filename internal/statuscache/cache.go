// Package statuscache memoizes per-tool detection results so dashboards can
// poll without triggering a probe storm. The cache is write-through: the
// loader fills misses, mutations on the registry clear it via the OnMutate
// hook, and an optional fsnotify watcher clears it when another process
// writes the backing store file.
package statuscache

import (
	"context"
	"path/filepath"
	"sync"

	fsnotify "github.com/fsnotify/fsnotify"

	"toolctl/internal/system"
	"toolctl/internal/tools"
)

// Loader resolves a miss. force is forwarded so a forced Get bypasses any
// store-level short-circuit as well.
type Loader func(ctx context.Context, toolID string, force bool) (tools.ToolStatus, error)

type Cache struct {
	mu      sync.RWMutex
	entries map[string]tools.ToolStatus
	loader  Loader
}

func New(loader Loader) *Cache {
	return &Cache{
		entries: make(map[string]tools.ToolStatus),
		loader:  loader,
	}
}

// Get returns the cached status for a tool, filling the entry through the
// loader on miss. force skips the lookup and always reloads.
func (c *Cache) Get(ctx context.Context, toolID string, force bool) (tools.ToolStatus, error) {
	if !force {
		c.mu.RLock()
		status, ok := c.entries[toolID]
		c.mu.RUnlock()
		if ok {
			return status, nil
		}
	}

	status, err := c.loader(ctx, toolID, force)
	if err != nil {
		return tools.ToolStatus{}, err
	}
	c.mu.Lock()
	c.entries[toolID] = status
	c.mu.Unlock()
	return status, nil
}

// WarmFill loads every given tool concurrently, fan-out/fan-in, so the first
// reader never pays the probe cost. Per-tool load failures are logged and
// skipped; the remaining entries still land.
func (c *Cache) WarmFill(ctx context.Context, toolIDs []string) {
	var wg sync.WaitGroup
	for _, id := range toolIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := c.Get(ctx, id, false); err != nil {
				system.Logger.Warn("cache warm fill failed", "tool", id, "err", err)
			}
		}(id)
	}
	wg.Wait()
}

// Put stores a status computed elsewhere (e.g. a full refresh pass).
func (c *Cache) Put(status tools.ToolStatus) {
	c.mu.Lock()
	c.entries[status.ID] = status
	c.mu.Unlock()
}

// Invalidate drops one tool's entry.
func (c *Cache) Invalidate(toolID string) {
	c.mu.Lock()
	delete(c.entries, toolID)
	c.mu.Unlock()
}

// Clear drops everything. Wired as the registry's OnMutate hook.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]tools.ToolStatus)
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Watch clears the cache whenever the store file changes on disk, covering
// writes from other toolctl processes. The parent directory is watched
// because sqlite replaces files on checkpoint. The returned stop function
// releases the watcher.
func (c *Cache) Watch(path string) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	base := filepath.Base(path)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				// sqlite sidecar files (-wal, -shm) count as store writes too
				if filepath.Base(ev.Name) == base ||
					filepath.Base(ev.Name) == base+"-wal" {
					system.Logger.Debug("store file changed, clearing status cache", "event", ev.Op.String())
					c.Clear()
				}
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				system.Logger.Warn("store watcher error", "err", werr)
			}
		}
	}()
	return func() { _ = w.Close() }, nil
}
