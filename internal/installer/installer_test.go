package installer

import (
	"context"
	"strings"
	"testing"

	"toolctl/internal/probe"
	"toolctl/internal/tools"
)

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

func npmInstance() tools.ToolInstance {
	tool, _ := tools.ByID("claude-code")
	inst := tools.NewLocalInstance(tool, true, "2.0.61", "/usr/local/bin/claude")
	inst.InstallMethod = tools.MethodNpm
	inst.InstallerPath = "/usr/local/bin/npm"
	return inst
}

func TestUpdateDispatchesToRecordedInstaller(t *testing.T) {
	inst := npmInstance()
	ex := &fakeExec{results: map[string]probe.Result{
		"/usr/local/bin/npm install -g @anthropic-ai/claude-code@latest --no-fund --no-audit": {Success: true},
		"/usr/local/bin/claude --version": {Success: true, Stdout: "2.1.0 (Claude Code)\n"},
	}}

	res, err := NewService(ex).UpdateInstanceByInstaller(context.Background(), &inst, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !res.Success || res.CurrentVersion != "2.1.0" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.HasPrefix(ex.calls[0], "/usr/local/bin/npm install -g") {
		t.Fatalf("should use the recorded installer, called %q", ex.calls[0])
	}
}

func TestUpdateFailurePropagates(t *testing.T) {
	inst := npmInstance()
	ex := &fakeExec{results: map[string]probe.Result{}}
	if _, err := NewService(ex).UpdateInstanceByInstaller(context.Background(), &inst, false); err == nil {
		t.Fatal("installer failure should propagate")
	}
}

func TestUpdateRejectsUnsupportedMethod(t *testing.T) {
	inst := npmInstance()
	inst.InstallMethod = tools.MethodOfficial
	if _, err := NewService(&fakeExec{}).UpdateInstanceByInstaller(context.Background(), &inst, false); err == nil {
		t.Fatal("official installs have no auto-update path")
	}
}
