package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the toolctl config directory under the user config base.
// On Linux this resolves to $XDG_CONFIG_HOME/toolctl, on macOS to
// ~/Library/Application Support/toolctl, on Windows to %AppData%/toolctl.
// Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, "toolctl"), nil
}

// InstanceDBPath returns the SQLite file holding tool instances, creating the
// config directory if needed.
func InstanceDBPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "instances.db"), nil
}

// DashboardPath returns the dashboard selection store file.
func DashboardPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dashboard.json"), nil
}
