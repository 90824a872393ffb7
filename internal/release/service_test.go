package release

import (
	"context"
	"testing"

	"toolctl/internal/probe"
	"toolctl/internal/tools"
)

type fakeExec struct {
	results map[string]probe.Result
}

func (f *fakeExec) Execute(_ context.Context, command string) probe.Result {
	if r, ok := f.results[command]; ok {
		return r
	}
	return probe.Result{Success: false, ExitCode: 1}
}

func TestCheckVersionReportsUpdate(t *testing.T) {
	tool, _ := tools.ByID("claude-code")
	ex := &fakeExec{results: map[string]probe.Result{
		"npm view @anthropic-ai/claude-code version --json": {Success: true, Stdout: `"2.1.0"` + "\n"},
		"npm view @anthropic-ai/claude-code version --json --registry=https://registry.npmmirror.com": {Success: true, Stdout: `"2.0.61"` + "\n"},
		"claude --version": {Success: true, Stdout: "2.0.61 (Claude Code)\n"},
	}}

	info, err := NewService(ex).CheckVersion(context.Background(), tool)
	if err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if info.LatestVersion != "2.1.0" {
		t.Fatalf("latest = %q", info.LatestVersion)
	}
	if !info.HasUpdate {
		t.Fatal("2.0.61 < 2.1.0 should flag an update")
	}
	if info.MirrorVersion != "2.0.61" || !info.MirrorIsStale {
		t.Fatalf("mirror state wrong: %+v", info)
	}
}

func TestCheckVersionMirrorFailureTolerated(t *testing.T) {
	tool, _ := tools.ByID("codex")
	ex := &fakeExec{results: map[string]probe.Result{
		"npm view @openai/codex version --json": {Success: true, Stdout: "0.65.0\n"},
		"codex --version":                       {Success: true, Stdout: "codex-cli 0.65.0\n"},
	}}
	info, err := NewService(ex).CheckVersion(context.Background(), tool)
	if err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if info.HasUpdate {
		t.Fatal("same version should not flag an update")
	}
	if info.MirrorVersion != "" {
		t.Fatalf("mirror should be empty on failure, got %q", info.MirrorVersion)
	}
}

func TestCheckVersionRegistryFailureFatal(t *testing.T) {
	tool, _ := tools.ByID("gemini-cli")
	ex := &fakeExec{results: map[string]probe.Result{}}
	if _, err := NewService(ex).CheckVersion(context.Background(), tool); err == nil {
		t.Fatal("registry failure should error")
	}
}
