package cli

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"toolctl/internal/app"
	"toolctl/internal/tools"
)

// withDeps builds the application once for a command run and tears it down
// afterwards.
func withDeps(fn func(*app.Deps) error) error {
	deps, err := app.Build()
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(deps)
}

// toolNames is the fuzzy search corpus: ids first, display names after, so a
// match index can be mapped back to the catalog entry.
func toolNames() []string {
	names := make([]string, 0, 2*len(tools.Catalog))
	for _, t := range tools.Catalog {
		names = append(names, t.ID)
	}
	for _, t := range tools.Catalog {
		names = append(names, t.Name)
	}
	return names
}

// resolveTool maps a user-supplied name to a catalog tool. Exact id matches
// win; otherwise the best fuzzy match over ids and display names is taken.
func resolveTool(arg string) (tools.Tool, error) {
	if t, ok := tools.ByID(strings.TrimSpace(arg)); ok {
		return t, nil
	}
	matches := fuzzy.Find(strings.TrimSpace(arg), toolNames())
	if len(matches) == 0 {
		return tools.Tool{}, fmt.Errorf("未知工具 %q（可用: %s）", arg, strings.Join(catalogIDs(), ", "))
	}
	idx := matches[0].Index % len(tools.Catalog)
	return tools.Catalog[idx], nil
}

func catalogIDs() []string {
	ids := make([]string, 0, len(tools.Catalog))
	for _, t := range tools.Catalog {
		ids = append(ids, t.ID)
	}
	return ids
}
