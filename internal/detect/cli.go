package detect

import (
	"context"
	"strings"

	"toolctl/internal/platform"
	"toolctl/internal/probe"
	"toolctl/internal/tools"
)

// cliDetector is the shared detection strategy for npm-distributed CLIs:
// locate a binary on the enhanced PATH, fall back to the npm global list,
// and classify the install method from where the binary lives.
type cliDetector struct {
	tool tools.Tool
	// officialDirs are path fragments that mark a vendor-installer layout
	// (e.g. ~/.claude/local) rather than a package manager.
	officialDirs []string
}

func (d *cliDetector) ToolID() string   { return d.tool.ID }
func (d *cliDetector) ToolName() string { return d.tool.Name }

// IsInstalled reports presence: any candidate binary on PATH, or an npm
// global record as fallback for shell-less environments.
func (d *cliDetector) IsInstalled(ctx context.Context, ex probe.Executor) bool {
	if d.lookupBinary(ctx, ex) != "" {
		return true
	}
	if d.tool.Package != "" {
		if v, err := npmGlobalVersion(ctx, ex, d.tool.Package); err == nil && v != "" {
			return true
		}
	}
	return false
}

// Version runs the tool's own check command and parses the output, falling
// back to the npm global record when the binary refuses --version.
func (d *cliDetector) Version(ctx context.Context, ex probe.Executor) string {
	res := ex.Execute(ctx, d.tool.CheckCommand)
	if res.Success {
		if v := tools.ParseVersion(res.Stdout); v != "" {
			return v
		}
	}
	if d.tool.Package != "" {
		if v, err := npmGlobalVersion(ctx, ex, d.tool.Package); err == nil {
			return v
		}
	}
	return ""
}

// InstallPath resolves the first candidate binary found on PATH.
func (d *cliDetector) InstallPath(ctx context.Context, ex probe.Executor) string {
	return d.lookupBinary(ctx, ex)
}

// InstallMethod classifies how the binary got there by its location. Binaries
// with no locatable path but an npm global record are npm-managed.
func (d *cliDetector) InstallMethod(ctx context.Context, ex probe.Executor) tools.InstallMethod {
	path := d.lookupBinary(ctx, ex)
	if path == "" {
		if d.tool.Package != "" {
			if v, err := npmGlobalVersion(ctx, ex, d.tool.Package); err == nil && v != "" {
				return tools.MethodNpm
			}
		}
		return ""
	}

	lower := strings.ToLower(path)
	for _, frag := range d.officialDirs {
		if strings.Contains(lower, frag) {
			return tools.MethodOfficial
		}
	}
	if strings.Contains(lower, "homebrew") || strings.Contains(lower, "/cellar/") || strings.Contains(lower, "linuxbrew") {
		return tools.MethodBrew
	}
	if strings.Contains(lower, "node_modules") ||
		strings.Contains(lower, ".npm-global") ||
		strings.Contains(lower, "/.nvm/") ||
		strings.Contains(lower, "/.volta/") ||
		strings.Contains(lower, "/.asdf/") {
		return tools.MethodNpm
	}
	if root := npmGlobalRoot(ctx, ex); root != "" {
		// npm's bin dir is the sibling of its global node_modules.
		if strings.HasPrefix(path, strings.TrimSuffix(root, "node_modules")) {
			return tools.MethodNpm
		}
	}
	return tools.MethodOther
}

// lookupBinary returns the resolved path of the first candidate binary found
// via the platform path-lookup command.
func (d *cliDetector) lookupBinary(ctx context.Context, ex probe.Executor) string {
	p := platform.Current()
	for _, bin := range d.tool.Binaries {
		res := ex.Execute(ctx, p.LookupCommand(bin))
		if !res.Success {
			continue
		}
		if line := firstLine(res.Stdout); line != "" {
			return line
		}
	}
	return ""
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

func mustTool(id string) tools.Tool {
	t, ok := tools.ByID(id)
	if !ok {
		panic("tool missing from catalog: " + id)
	}
	return t
}
