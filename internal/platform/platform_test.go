package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"toolctl/internal/testutil"
	"toolctl/internal/tools"
)

func TestPathSeparator(t *testing.T) {
	p := Current()
	if runtime.GOOS == "windows" {
		if p.PathSeparator() != ";" {
			t.Fatalf("expected ';' on windows, got %q", p.PathSeparator())
		}
	} else if p.PathSeparator() != ":" {
		t.Fatalf("expected ':' on unix, got %q", p.PathSeparator())
	}
}

func TestLookupCommand(t *testing.T) {
	p := Info{OS: "linux"}
	if p.LookupCommand("npm") != "which npm" {
		t.Fatalf("unexpected lookup command: %s", p.LookupCommand("npm"))
	}
	w := Info{OS: "windows"}
	if w.LookupCommand("npm") != "where npm" {
		t.Fatalf("unexpected lookup command: %s", w.LookupCommand("npm"))
	}
}

func TestEnhancedPathKeepsCurrent(t *testing.T) {
	defer testutil.WithEnv(t, "PATH", "/somewhere/custom")()
	got := Current().EnhancedPath()
	if !strings.Contains(got, "/somewhere/custom") {
		t.Fatalf("enhanced PATH should retain the live PATH, got %q", got)
	}
	if runtime.GOOS != "windows" && !strings.Contains(got, "/usr/local/bin") {
		t.Fatalf("enhanced PATH should prepend common bins, got %q", got)
	}
}

func TestScanToolExecutables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "claude")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\necho 2.0.61\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	defer testutil.WithEnv(t, "PATH", dir)()

	tool, _ := tools.ByID("claude-code")
	found := ScanToolExecutables(tool)
	has := false
	for _, f := range found {
		if f == bin {
			has = true
		}
	}
	if !has {
		t.Fatalf("expected scan to find %s, got %v", bin, found)
	}
}

func TestScanInstallerPathsFindsAdjacentNpm(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	dir := t.TempDir()
	toolPath := filepath.Join(dir, "claude")
	npmPath := filepath.Join(dir, "npm")
	for _, p := range []string{toolPath, npmPath} {
		if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	cands := ScanInstallerPaths(toolPath)
	if len(cands) == 0 || cands[0].Type != tools.MethodNpm || cands[0].Path != npmPath {
		t.Fatalf("expected adjacent npm candidate first, got %v", cands)
	}
}
