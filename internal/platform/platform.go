package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// Info describes the host platform.
type Info struct {
	OS   string
	Arch string
}

// Current returns the host platform info.
func Current() Info {
	return Info{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// IsWindows reports whether the host is Windows.
func (p Info) IsWindows() bool { return p.OS == "windows" }

// PathSeparator returns the PATH list separator for the platform.
func (p Info) PathSeparator() string {
	if p.IsWindows() {
		return ";"
	}
	return ":"
}

// LookupCommand returns the platform's path-lookup command for a binary name
// ("which x" / "where x").
func (p Info) LookupCommand(name string) string {
	if p.IsWindows() {
		return "where " + name
	}
	return "which " + name
}

// EnhancedPath builds a PATH value with common tool install locations
// prepended to the current PATH. GUI launches and minimal shells often miss
// Homebrew, npm-global and version-manager bins, so we merge rather than
// replace: enhanced paths first, the live PATH after.
func (p Info) EnhancedPath() string {
	sep := p.PathSeparator()
	current := os.Getenv("PATH")

	var paths []string
	if p.IsWindows() {
		paths = windowsSystemPaths()
	} else {
		paths = unixSystemPaths()
	}

	joined := ""
	for i, s := range paths {
		if i > 0 {
			joined += sep
		}
		joined += s
	}
	if current == "" {
		return joined
	}
	return joined + sep + current
}

func windowsSystemPaths() []string {
	paths := []string{
		`C:\Program Files\nodejs`,
		`C:\Program Files (x86)\nodejs`,
	}
	if lad := os.Getenv("LOCALAPPDATA"); lad != "" {
		paths = append(paths,
			filepath.Join(lad, "Programs", "claude-code"),
			filepath.Join(lad, "Programs", "claude", "bin"),
		)
	}
	if up := os.Getenv("USERPROFILE"); up != "" {
		paths = append(paths,
			filepath.Join(up, ".claude", "bin"),
			filepath.Join(up, ".local", "bin"),
		)
	}
	return paths
}

func unixSystemPaths() []string {
	paths := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
		"/usr/bin",
		"/bin",
		"/usr/sbin",
		"/sbin",
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return paths
	}

	prepend := func(p string) {
		paths = append([]string{p}, paths...)
	}
	prepend(filepath.Join(home, ".local", "bin"))
	prepend(filepath.Join(home, ".claude", "bin"))
	prepend(filepath.Join(home, ".claude", "local"))

	// nvm: prefer NVM_DIR, then the usual symlinks, then the newest
	// installed version as a last resort.
	nvmAdded := false
	if nvmDir := os.Getenv("NVM_DIR"); nvmDir != "" {
		if cur := filepath.Join(nvmDir, "current", "bin"); dirExists(cur) {
			prepend(cur)
			nvmAdded = true
		}
	}
	if !nvmAdded {
		for _, candidate := range []string{
			filepath.Join(home, ".nvm", "current", "bin"),
			filepath.Join(home, ".nvm", "versions", "node", "default", "bin"),
		} {
			if dirExists(candidate) {
				prepend(candidate)
				nvmAdded = true
				break
			}
		}
	}
	if !nvmAdded {
		versionsDir := filepath.Join(home, ".nvm", "versions", "node")
		if entries, err := os.ReadDir(versionsDir); err == nil {
			var versions []string
			for _, e := range entries {
				if e.IsDir() {
					versions = append(versions, e.Name())
				}
			}
			sort.Strings(versions)
			if len(versions) > 0 {
				if bin := filepath.Join(versionsDir, versions[len(versions)-1], "bin"); dirExists(bin) {
					prepend(bin)
				}
			}
		}
	}

	// npm global bin, honoring a custom prefix.
	if npmPrefix := os.Getenv("NPM_CONFIG_PREFIX"); npmPrefix != "" {
		prepend(filepath.Join(npmPrefix, "bin"))
	} else {
		paths = append(paths, filepath.Join(home, ".npm-global", "bin"))
	}

	// asdf and volta shims.
	asdfDir := os.Getenv("ASDF_DIR")
	if asdfDir == "" {
		asdfDir = filepath.Join(home, ".asdf")
	}
	if shims := filepath.Join(asdfDir, "shims"); dirExists(shims) {
		prepend(shims)
	}
	voltaHome := os.Getenv("VOLTA_HOME")
	if voltaHome == "" {
		voltaHome = filepath.Join(home, ".volta")
	}
	if bin := filepath.Join(voltaHome, "bin"); dirExists(bin) {
		prepend(bin)
	}

	return paths
}

func dirExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}
