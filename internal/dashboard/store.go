// Package dashboard persists the dashboard's UI state: which instance is
// pinned per tool and the last selected provider. The store is a small JSON
// file next to the instance database, read through an in-memory cache.
package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"toolctl/internal/system"
)

// Store is the on-disk shape of dashboard.json.
type Store struct {
	// Version is the data format version, bumped on breaking changes.
	Version int `json:"version"`
	// ToolInstanceSelections maps tool id to the pinned instance id,
	// e.g. {"claude-code": "claude-code-local", "codex": "codex-wsl-Ubuntu"}.
	ToolInstanceSelections map[string]string `json:"tool_instance_selections"`
	// SelectedProviderID is the last provider the user picked, empty if none.
	SelectedProviderID string `json:"selected_provider_id,omitempty"`
	UpdatedAt          int64  `json:"updated_at"`
}

func defaultStore() Store {
	return Store{
		Version:                1,
		ToolInstanceSelections: map[string]string{},
		UpdatedAt:              time.Now().Unix(),
	}
}

// Manager serializes access to one dashboard.json file.
type Manager struct {
	mu    sync.Mutex
	path  string
	cache *Store
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load returns the current store. A missing file yields the default store and
// writes it out so later reads see a concrete file.
func (m *Manager) Load() (Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *Manager) loadLocked() (Store, error) {
	if m.cache != nil {
		return *m.cache, nil
	}

	b, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			system.Logger.Warn("dashboard store missing, writing defaults", "path", m.path)
			st := defaultStore()
			if werr := m.saveLocked(&st); werr != nil {
				system.Logger.Warn("writing default dashboard store failed", "err", werr)
			}
			return st, nil
		}
		return Store{}, err
	}

	var st Store
	if err := json.Unmarshal(b, &st); err != nil {
		return Store{}, fmt.Errorf("解析 dashboard 配置失败: %w", err)
	}
	if st.ToolInstanceSelections == nil {
		st.ToolInstanceSelections = map[string]string{}
	}
	m.cache = &st
	return st, nil
}

func (m *Manager) saveLocked(st *Store) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, b, 0o644); err != nil {
		return err
	}
	cp := *st
	m.cache = &cp
	return nil
}

// ToolSelection returns the pinned instance id for a tool, empty if none.
func (m *Manager) ToolSelection(toolID string) (string, error) {
	st, err := m.Load()
	if err != nil {
		return "", err
	}
	return st.ToolInstanceSelections[toolID], nil
}

// SetToolSelection pins an instance for a tool and persists immediately.
func (m *Manager) SetToolSelection(toolID, instanceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.loadLocked()
	if err != nil {
		return err
	}
	st.ToolInstanceSelections[toolID] = instanceID
	st.UpdatedAt = time.Now().Unix()
	return m.saveLocked(&st)
}

// ClearToolSelection removes a tool's pin. Missing keys are a no-op.
func (m *Manager) ClearToolSelection(toolID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.loadLocked()
	if err != nil {
		return err
	}
	if _, ok := st.ToolInstanceSelections[toolID]; !ok {
		return nil
	}
	delete(st.ToolInstanceSelections, toolID)
	st.UpdatedAt = time.Now().Unix()
	return m.saveLocked(&st)
}

// SelectedProvider returns the last selected provider id, empty if none.
func (m *Manager) SelectedProvider() (string, error) {
	st, err := m.Load()
	if err != nil {
		return "", err
	}
	return st.SelectedProviderID, nil
}

// SetSelectedProvider records the provider pick; empty clears it.
func (m *Manager) SetSelectedProvider(providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.loadLocked()
	if err != nil {
		return err
	}
	st.SelectedProviderID = providerID
	st.UpdatedAt = time.Now().Unix()
	return m.saveLocked(&st)
}

// ClearCache drops the in-memory copy so the next read hits the file.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	m.cache = nil
	m.mu.Unlock()
}
