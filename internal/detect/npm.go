package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"toolctl/internal/probe"
)

// npmGlobalVersion asks npm for the globally installed version of pkg.
func npmGlobalVersion(ctx context.Context, ex probe.Executor, pkg string) (string, error) {
	res := ex.Execute(ctx, fmt.Sprintf("npm ls -g --depth=0 %s --json", pkg))
	// npm exits non-zero when the package is missing but still emits JSON.
	if res.Stdout == "" {
		return "", fmt.Errorf("npm ls produced no output: %s", strings.TrimSpace(res.Stderr))
	}
	var data struct {
		Dependencies map[string]struct {
			Version string `json:"version"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &data); err != nil {
		return "", err
	}
	if d, ok := data.Dependencies[pkg]; ok && d.Version != "" {
		return d.Version, nil
	}
	return "", fmt.Errorf("package not found: %s", pkg)
}

// npmGlobalRoot returns npm's global node_modules directory, used to classify
// an install path as npm-managed.
func npmGlobalRoot(ctx context.Context, ex probe.Executor) string {
	res := ex.Execute(ctx, "npm root -g")
	if !res.Success {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}
