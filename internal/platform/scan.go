package platform

import (
	"os"
	"path/filepath"

	"toolctl/internal/tools"
)

// InstallerCandidate pairs an installer binary with the method it implies.
type InstallerCandidate struct {
	Path string
	Type tools.InstallMethod
}

// ScanToolExecutables walks the enhanced PATH directories plus a few known
// install spots and returns every executable matching one of the tool's
// binary names. Duplicate paths are collapsed; order follows PATH priority.
func ScanToolExecutables(tool tools.Tool) []string {
	p := Current()
	dirs := filepath.SplitList(p.EnhancedPath())

	seen := map[string]bool{}
	var found []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, bin := range tool.Binaries {
			name := bin
			if p.IsWindows() {
				name += ".exe"
			}
			full := filepath.Join(dir, name)
			resolved, ok := executableAt(full)
			if !ok || seen[resolved] {
				continue
			}
			seen[resolved] = true
			found = append(found, resolved)
		}
	}
	return found
}

// ScanInstallerPaths looks near a tool executable for the binary that likely
// installed it. An npm-managed tool sits next to (or under the prefix of) an
// npm binary; a Homebrew keg links into the same bin directory as brew.
func ScanInstallerPaths(toolPath string) []InstallerCandidate {
	var out []InstallerCandidate
	p := Current()

	dir := filepath.Dir(toolPath)
	npmName, brewName := "npm", "brew"
	if p.IsWindows() {
		npmName = "npm.cmd"
	}

	// Same bin directory first: npm-global and nvm layouts put npm and the
	// installed CLIs side by side.
	if resolved, ok := executableAt(filepath.Join(dir, npmName)); ok {
		out = append(out, InstallerCandidate{Path: resolved, Type: tools.MethodNpm})
	}
	if !p.IsWindows() {
		if resolved, ok := executableAt(filepath.Join(dir, brewName)); ok {
			out = append(out, InstallerCandidate{Path: resolved, Type: tools.MethodBrew})
		}
		// Homebrew cellar symlink target lives under /opt/homebrew or
		// /usr/local even when the tool link is elsewhere.
		for _, brewBin := range []string{"/opt/homebrew/bin/brew", "/usr/local/bin/brew"} {
			if resolved, ok := executableAt(brewBin); ok && !hasCandidate(out, resolved) {
				out = append(out, InstallerCandidate{Path: resolved, Type: tools.MethodBrew})
			}
		}
	}
	return out
}

func hasCandidate(cs []InstallerCandidate, path string) bool {
	for _, c := range cs {
		if c.Path == path {
			return true
		}
	}
	return false
}

// executableAt resolves symlinks and reports whether path is a regular,
// executable file. The resolved path is returned so duplicates collapse.
func executableAt(path string) (string, bool) {
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return "", false
	}
	if Current().IsWindows() {
		return path, true
	}
	if st.Mode()&0o111 == 0 {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved, true
	}
	return path, true
}
