package detect

import (
	"context"
	"testing"

	"toolctl/internal/probe"
	"toolctl/internal/tools"
)

// fakeExec replays canned results per command line. Unknown commands fail the
// way a missing binary would.
type fakeExec struct {
	results map[string]probe.Result
	calls   []string
}

func (f *fakeExec) Execute(_ context.Context, command string) probe.Result {
	f.calls = append(f.calls, command)
	if r, ok := f.results[command]; ok {
		return r
	}
	return probe.Result{Success: false, ExitCode: 1}
}

func ok(stdout string) probe.Result {
	return probe.Result{Success: true, Stdout: stdout}
}

func TestRegistryHasAllCatalogTools(t *testing.T) {
	r := NewRegistry()
	if len(r.All()) != len(tools.Catalog) {
		t.Fatalf("expected %d detectors, got %d", len(tools.Catalog), len(r.All()))
	}
	for _, tool := range tools.Catalog {
		d, found := r.Get(tool.ID)
		if !found {
			t.Fatalf("no detector for %s", tool.ID)
		}
		if d.ToolID() != tool.ID || d.ToolName() != tool.Name {
			t.Fatalf("detector identity mismatch for %s", tool.ID)
		}
	}
}

func TestDetectorFindsBinaryOnPath(t *testing.T) {
	ex := &fakeExec{results: map[string]probe.Result{
		"which claude":     ok("/usr/local/bin/claude\n"),
		"claude --version": ok("2.0.61 (Claude Code)\n"),
	}}
	d, _ := NewRegistry().Get("claude-code")
	ctx := context.Background()

	if !d.IsInstalled(ctx, ex) {
		t.Fatal("binary on PATH should report installed")
	}
	if v := d.Version(ctx, ex); v != "2.0.61" {
		t.Fatalf("unexpected version: %q", v)
	}
	if p := d.InstallPath(ctx, ex); p != "/usr/local/bin/claude" {
		t.Fatalf("unexpected install path: %q", p)
	}
}

func TestDetectorNpmFallback(t *testing.T) {
	ex := &fakeExec{results: map[string]probe.Result{
		"npm ls -g --depth=0 @google/gemini-cli --json": ok(`{"dependencies":{"@google/gemini-cli":{"version":"0.9.1"}}}`),
	}}
	d, _ := NewRegistry().Get("gemini-cli")
	ctx := context.Background()

	if !d.IsInstalled(ctx, ex) {
		t.Fatal("npm global record should report installed")
	}
	if v := d.Version(ctx, ex); v != "0.9.1" {
		t.Fatalf("unexpected version: %q", v)
	}
	if m := d.InstallMethod(ctx, ex); m != tools.MethodNpm {
		t.Fatalf("unexpected install method: %q", m)
	}
}

func TestDetectorNotInstalled(t *testing.T) {
	ex := &fakeExec{results: map[string]probe.Result{}}
	d, _ := NewRegistry().Get("codex")
	if d.IsInstalled(context.Background(), ex) {
		t.Fatal("nothing found anywhere should report not installed")
	}
}

func TestInstallMethodClassification(t *testing.T) {
	cases := []struct {
		path string
		want tools.InstallMethod
	}{
		{"/opt/homebrew/bin/claude", tools.MethodBrew},
		{"/home/me/.nvm/versions/node/v22.1.0/bin/claude", tools.MethodNpm},
		{"/home/me/.npm-global/bin/claude", tools.MethodNpm},
		{"/home/me/.claude/local/claude", tools.MethodOfficial},
		{"/usr/bin/claude", tools.MethodOther},
	}
	d, _ := NewRegistry().Get("claude-code")
	for _, c := range cases {
		ex := &fakeExec{results: map[string]probe.Result{
			"which claude": ok(c.path + "\n"),
		}}
		if got := d.InstallMethod(context.Background(), ex); got != c.want {
			t.Errorf("InstallMethod for %s = %q, want %q", c.path, got, c.want)
		}
	}
}
