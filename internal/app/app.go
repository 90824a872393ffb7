// Package app wires the registry together and hosts the TUI entry point.
package app

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"toolctl/internal/config"
	"toolctl/internal/dashboard"
	"toolctl/internal/detect"
	"toolctl/internal/probe"
	"toolctl/internal/registry"
	"toolctl/internal/statuscache"
	"toolctl/internal/store"
	"toolctl/internal/tools"
	"toolctl/internal/ui"
)

// Deps is the assembled application: one store, one registry, the status
// cache and the dashboard state, shared by the TUI, the CLI and the web API.
type Deps struct {
	DB        *store.InstanceDB
	Registry  *registry.Registry
	Cache     *statuscache.Cache
	Dashboard *dashboard.Manager

	stopWatch func()
}

// Build opens the store and constructs the registry with its default
// collaborators. The status cache is cleared on every registry mutation and
// on external writes to the store file.
func Build() (*Deps, error) {
	dbPath, err := config.InstanceDBPath()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开实例数据库失败: %w", err)
	}

	// loader closes over reg, which is assigned right below
	var reg *registry.Registry
	cache := statuscache.New(func(ctx context.Context, toolID string, force bool) (tools.ToolStatus, error) {
		return reg.DetectSingleToolWithCache(ctx, toolID, force)
	})
	reg, err = registry.New(db, detect.NewRegistry(), probe.NewCommandExecutor(), registry.Options{
		OnMutate: cache.Clear,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	dashPath, err := config.DashboardPath()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	d := &Deps{DB: db, Registry: reg, Cache: cache, Dashboard: dashboard.NewManager(dashPath)}
	if stop, werr := cache.Watch(dbPath); werr == nil {
		d.stopWatch = stop
	}
	return d, nil
}

// Close releases the store and the cache watcher.
func (d *Deps) Close() {
	if d.stopWatch != nil {
		d.stopWatch()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// Start runs the TUI program and returns any error.
func Start() error {
	deps, err := Build()
	if err != nil {
		return err
	}
	defer deps.Close()
	if _, err := tea.NewProgram(ui.InitialModel(deps.Registry), tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

// Main is a helper to use as entry-point from cmd.
func Main() {
	if err := Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
