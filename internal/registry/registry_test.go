package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"toolctl/internal/detect"
	"toolctl/internal/platform"
	"toolctl/internal/probe"
	"toolctl/internal/release"
	"toolctl/internal/store"
	"toolctl/internal/tools"
)

// fakeExec replays canned results per command line, safe for concurrent
// fan-out. Unknown commands fail like a missing binary.
type fakeExec struct {
	mu      sync.Mutex
	results map[string]probe.Result
	calls   []string
}

func (f *fakeExec) Execute(_ context.Context, command string) probe.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, command)
	if r, ok := f.results[command]; ok {
		return r
	}
	return probe.Result{Success: false, ExitCode: 1}
}

func (f *fakeExec) set(command string, r probe.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[command] = r
}

func (f *fakeExec) unset(command string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.results, command)
}

func (f *fakeExec) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func ok(stdout string) probe.Result { return probe.Result{Success: true, Stdout: stdout} }

func lookup(name string) string { return platform.Current().LookupCommand(name) }

type fakeWSL struct {
	available bool
	installed bool
	version   string
	path      string
	err       error
}

func (f *fakeWSL) Available() bool { return f.available }
func (f *fakeWSL) DetectTool(context.Context, string, string) (bool, string, string, error) {
	return f.installed, f.version, f.path, f.err
}

type fakeVersions struct {
	info release.VersionInfo
	err  error
}

func (f *fakeVersions) CheckVersion(context.Context, tools.Tool) (release.VersionInfo, error) {
	return f.info, f.err
}

type fakeInstaller struct {
	result tools.UpdateResult
	err    error
	calls  int
}

func (f *fakeInstaller) UpdateInstanceByInstaller(_ context.Context, _ *tools.ToolInstance, _ bool) (tools.UpdateResult, error) {
	f.calls++
	return f.result, f.err
}

type testEnv struct {
	reg       *Registry
	db        *store.InstanceDB
	exec      *fakeExec
	wsl       *fakeWSL
	versions  *fakeVersions
	installer *fakeInstaller
	mutations int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "instances.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:        db,
		exec:      &fakeExec{results: map[string]probe.Result{}},
		wsl:       &fakeWSL{},
		versions:  &fakeVersions{},
		installer: &fakeInstaller{},
	}
	reg, err := New(db, detect.NewRegistry(), env.exec, Options{
		WSL:       env.wsl,
		Versions:  env.versions,
		Installer: env.installer,
		OnMutate:  func() { env.mutations++ },
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	env.reg = reg
	return env
}

// claudeInstalled scripts the probes for a claude binary at path.
func (e *testEnv) claudeInstalled(path string) {
	e.exec.set(lookup("claude"), ok(path+"\n"))
	e.exec.set("claude --version", ok("2.0.61 (Claude Code)\n"))
	e.exec.set(path+" --version", ok("2.0.61 (Claude Code)\n"))
}

func (e *testEnv) claudeUninstalled(path string) {
	e.exec.unset(lookup("claude"))
	e.exec.unset("claude --version")
	e.exec.unset(path + " --version")
}

func (e *testEnv) localRows(t *testing.T, baseID string) []tools.ToolInstance {
	t.Helper()
	locals, err := e.db.GetLocalInstances()
	if err != nil {
		t.Fatalf("GetLocalInstances: %v", err)
	}
	var out []tools.ToolInstance
	for _, inst := range locals {
		if inst.BaseID == baseID {
			out = append(out, inst)
		}
	}
	return out
}

func TestDetectAndPersistLocalToolsNoDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.reg.DetectAndPersistLocalTools(ctx); err != nil {
			t.Fatalf("detect batch %d: %v", i, err)
		}
	}

	grouped, err := env.reg.GetAllGrouped()
	if err != nil {
		t.Fatal(err)
	}
	for id, instances := range grouped {
		locals := 0
		for _, inst := range instances {
			if inst.ToolType == tools.TypeLocal {
				locals++
			}
		}
		if locals > 1 {
			t.Fatalf("tool %s accumulated %d local rows", id, locals)
		}
	}
	if env.mutations == 0 {
		t.Fatal("mutating batch should fire the invalidation hook")
	}
}

func TestDetectAndPersistSingleCleansUpWhenUninstalled(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	inst, err := env.reg.DetectAndPersistSingle(ctx, "claude-code")
	if err != nil {
		t.Fatalf("first detect: %v", err)
	}
	if !inst.Installed || len(env.localRows(t, "claude-code")) != 1 {
		t.Fatalf("expected one installed row, got %+v", inst)
	}

	env.claudeUninstalled("/usr/local/bin/claude")
	inst, err = env.reg.DetectAndPersistSingle(ctx, "claude-code")
	if err != nil {
		t.Fatalf("second detect: %v", err)
	}
	if inst.Installed {
		t.Fatal("tool was removed, should not report installed")
	}
	if rows := env.localRows(t, "claude-code"); len(rows) != 0 {
		t.Fatalf("expected zero rows after uninstall, got %d", len(rows))
	}
}

func TestDetectAndPersistSingleUnknownTool(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.reg.DetectAndPersistSingle(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPathConflictAcrossTools(t *testing.T) {
	env := newTestEnv(t)
	shared := "/usr/local/bin/shared"
	env.claudeInstalled(shared)
	env.exec.set(lookup("codex"), ok(shared+"\n"))
	env.exec.set("codex --version", ok("codex-cli 0.65.0\n"))
	ctx := context.Background()

	if _, err := env.reg.DetectAndPersistSingle(ctx, "claude-code"); err != nil {
		t.Fatalf("claude detect: %v", err)
	}

	_, err := env.reg.DetectAndPersistSingle(ctx, "codex")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "Claude Code") {
		t.Fatalf("conflict should name the claiming tool: %v", err)
	}
	if len(env.localRows(t, "codex")) != 0 {
		t.Fatal("conflicting instance must not be persisted")
	}
	if len(env.localRows(t, "claude-code")) != 1 {
		t.Fatal("the first claimer must survive the conflict")
	}
}

func TestPathConflictStillInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	env.exec.set(lookup("codex"), ok("/usr/local/bin/codex\n"))
	env.exec.set("codex --version", ok("codex-cli 0.65.0\n"))
	ctx := context.Background()

	if _, err := env.reg.DetectAndPersistSingle(ctx, "claude-code"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.reg.DetectAndPersistSingle(ctx, "codex"); err != nil {
		t.Fatal(err)
	}

	// codex now resolves onto claude's path: re-detection deletes codex's
	// stale row, then fails on the conflict
	env.exec.set(lookup("codex"), ok("/usr/local/bin/claude\n"))
	before := env.mutations
	if _, err := env.reg.DetectAndPersistSingle(ctx, "codex"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(env.localRows(t, "codex")) != 0 {
		t.Fatal("stale codex row should be gone")
	}
	if env.mutations == before {
		t.Fatal("row deletion must fire the invalidation hook even when the call fails")
	}
}

func TestRefreshRemovesUninstalledTools(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	if _, err := env.reg.DetectAndPersistLocalTools(ctx); err != nil {
		t.Fatal(err)
	}
	if len(env.localRows(t, "claude-code")) != 1 {
		t.Fatal("seed row missing")
	}

	env.claudeUninstalled("/usr/local/bin/claude")
	installed, err := env.reg.RefreshLocalTools(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	for _, inst := range installed {
		if inst.BaseID == "claude-code" {
			t.Fatal("uninstalled tool should not be in the refresh result")
		}
	}
	if rows := env.localRows(t, "claude-code"); len(rows) != 0 {
		t.Fatalf("post-refresh store should have no claude rows, got %d", len(rows))
	}
}

func TestDeleteInstanceRules(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	builtin, err := env.reg.DetectAndPersistSingle(ctx, "claude-code")
	if err != nil {
		t.Fatal(err)
	}
	if err := env.reg.DeleteInstance(builtin.InstanceID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("builtin local delete should fail with precondition, got %v", err)
	}

	ssh, err := env.reg.AddSSHInstance(ctx, "codex", tools.SSHConfig{Host: "dev.example.com", Port: 22, User: "me"})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.reg.DeleteInstance(ssh.InstanceID); err != nil {
		t.Fatalf("ssh delete should succeed: %v", err)
	}
	if exists, _ := env.db.InstanceExists(ssh.InstanceID); exists {
		t.Fatal("ssh instance should be gone")
	}

	if err := env.reg.DeleteInstance("missing-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddSSHInstanceDuplicate(t *testing.T) {
	env := newTestEnv(t)
	cfg := tools.SSHConfig{Host: "dev.example.com", Port: 22, User: "me"}
	ctx := context.Background()

	inst, err := env.reg.AddSSHInstance(ctx, "claude-code", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if inst.Installed {
		t.Fatal("ssh instances are stored undetected")
	}
	if _, err := env.reg.AddSSHInstance(ctx, "claude-code", cfg); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate ssh add should conflict, got %v", err)
	}
}

func TestAddWSLInstance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// capability missing
	if _, err := env.reg.AddWSLInstance(ctx, "claude-code", "Ubuntu"); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}

	env.wsl.available = true
	env.wsl.installed = true
	env.wsl.version = "2.0.61"
	env.wsl.path = "/usr/bin/claude"

	inst, err := env.reg.AddWSLInstance(ctx, "claude-code", "Ubuntu")
	if err != nil {
		t.Fatalf("wsl add: %v", err)
	}
	if inst.WSLDistro != "Ubuntu" || !inst.Installed || inst.Version != "2.0.61" {
		t.Fatalf("unexpected wsl instance: %+v", inst)
	}

	// same (tool, distro) pair again hits the id uniqueness constraint
	if _, err := env.reg.AddWSLInstance(ctx, "claude-code", "Ubuntu"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate wsl add should conflict, got %v", err)
	}
}

func TestAddWSLInstanceStoreFailureIsNotConflict(t *testing.T) {
	env := newTestEnv(t)
	env.wsl.available = true
	env.wsl.installed = true
	env.wsl.version = "2.0.61"
	env.wsl.path = "/usr/bin/claude"

	// a dead store is an I/O failure, not a duplicate
	if err := env.db.Close(); err != nil {
		t.Fatal(err)
	}
	_, err := env.reg.AddWSLInstance(context.Background(), "claude-code", "Ubuntu")
	if err == nil {
		t.Fatal("closed store must fail the add")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatalf("store failure misreported as conflict: %v", err)
	}
}

func TestAddToolInstanceMissingPathWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.reg.AddToolInstance(context.Background(), "claude-code", "/bin/nonexistent-xyz", tools.MethodOther, "")
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
	all, _ := env.db.GetAllInstances()
	if len(all) != 0 {
		t.Fatalf("failed add must write nothing, store has %d rows", len(all))
	}
}

func TestAddToolInstanceManual(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	env.exec.set(path+" --version", ok("2.0.61 (Claude Code)\n"))

	// npm method without an installer path is a precondition failure
	if _, err := env.reg.AddToolInstance(ctx, "claude-code", path, tools.MethodNpm, ""); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected installer-path precondition, got %v", err)
	}

	status, err := env.reg.AddToolInstance(ctx, "claude-code", path, tools.MethodOther, "")
	if err != nil {
		t.Fatalf("manual add: %v", err)
	}
	if !status.Installed || status.ID != "claude-code" {
		t.Fatalf("unexpected status: %+v", status)
	}
	rows := env.localRows(t, "claude-code")
	if len(rows) != 1 || rows[0].IsBuiltin {
		t.Fatalf("manual instance should be stored non-builtin: %+v", rows)
	}

	// a second tool claiming the same path must conflict and name the first
	if _, err := env.reg.AddToolInstance(ctx, "codex", path, tools.MethodOther, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestValidateToolPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.reg.ValidateToolPath(ctx, "/bin/nonexistent-xyz"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("missing path: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := env.reg.ValidateToolPath(ctx, path); !errors.Is(err, ErrProbeFailure) {
		t.Fatalf("unscripted command should be a probe failure: %v", err)
	}

	env.exec.set(path+" --version", ok("no version here\n"))
	if _, err := env.reg.ValidateToolPath(ctx, path); !errors.Is(err, ErrProbeFailure) {
		t.Fatalf("digit-free output should be rejected: %v", err)
	}

	env.exec.set(path+" --version", ok("1.2.3\n"))
	v, err := env.reg.ValidateToolPath(ctx, path)
	if err != nil || v != "1.2.3" {
		t.Fatalf("validate: v=%q err=%v", v, err)
	}
}

func TestGetLocalToolStatusEmptyStore(t *testing.T) {
	env := newTestEnv(t)
	statuses, err := env.reg.GetLocalToolStatus()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != len(tools.Catalog) {
		t.Fatalf("expected %d statuses, got %d", len(tools.Catalog), len(statuses))
	}
	for _, s := range statuses {
		if s.Installed || s.Version != "" {
			t.Fatalf("empty store must project not-installed: %+v", s)
		}
	}
	if env.exec.callCount() != 0 {
		t.Fatal("status projection must not probe")
	}
}

func TestUpdateInstanceWritesBackVersion(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	inst, err := env.reg.DetectAndPersistSingle(ctx, "claude-code")
	if err != nil {
		t.Fatal(err)
	}

	env.installer.result = tools.UpdateResult{Success: true, CurrentVersion: "2.1.0", Message: "更新完成"}
	res, err := env.reg.UpdateInstance(ctx, inst.InstanceID, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !res.Success || env.installer.calls != 1 {
		t.Fatalf("installer not exercised: %+v calls=%d", res, env.installer.calls)
	}
	got, _, _ := env.db.GetInstance(inst.InstanceID)
	if got.Version != "2.1.0" {
		t.Fatalf("new version not persisted: %q", got.Version)
	}
}

func TestUpdateInstanceFailureLeavesStore(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	inst, err := env.reg.DetectAndPersistSingle(ctx, "claude-code")
	if err != nil {
		t.Fatal(err)
	}
	env.installer.err = errors.New("npm exploded")
	if _, err := env.reg.UpdateInstance(ctx, inst.InstanceID, true); err == nil {
		t.Fatal("installer failure should propagate")
	}
	got, _, _ := env.db.GetInstance(inst.InstanceID)
	if got.Version != inst.Version {
		t.Fatal("failed update must not touch the store")
	}

	if _, err := env.reg.UpdateInstance(ctx, "missing", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckUpdateForInstance(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	inst, err := env.reg.DetectAndPersistSingle(ctx, "claude-code")
	if err != nil {
		t.Fatal(err)
	}

	env.versions.info = release.VersionInfo{LatestVersion: "2.1.0", MirrorVersion: "2.0.61", MirrorIsStale: true}
	res, err := env.reg.CheckUpdateForInstance(ctx, inst.InstanceID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Success || !res.HasUpdate || res.CurrentVersion != "2.0.61" || res.LatestVersion != "2.1.0" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// the version probe failing while a path exists is a hard error
	env.exec.unset("/usr/local/bin/claude --version")
	if _, err := env.reg.CheckUpdateForInstance(ctx, inst.InstanceID); !errors.Is(err, ErrProbeFailure) {
		t.Fatalf("expected ErrProbeFailure, got %v", err)
	}
}

func TestCheckUpdateRemoteFailureDowngraded(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	inst, err := env.reg.DetectAndPersistSingle(ctx, "claude-code")
	if err != nil {
		t.Fatal(err)
	}
	env.versions.err = errors.New("registry unreachable")
	res, err := env.reg.CheckUpdateForInstance(ctx, inst.InstanceID)
	if err != nil {
		t.Fatalf("remote failure must not error the call: %v", err)
	}
	if !res.Success || !strings.Contains(res.Message, "无法检查更新") {
		t.Fatalf("expected downgraded message, got %+v", res)
	}
}

func TestCheckUpdateSyncsObservedVersion(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	inst, err := env.reg.DetectAndPersistSingle(ctx, "claude-code")
	if err != nil {
		t.Fatal(err)
	}
	// binary was upgraded behind our back
	env.exec.set("/usr/local/bin/claude --version", ok("2.2.0 (Claude Code)\n"))
	env.versions.info = release.VersionInfo{LatestVersion: "2.2.0"}

	res, err := env.reg.CheckUpdateForInstance(ctx, inst.InstanceID)
	if err != nil {
		t.Fatal(err)
	}
	if res.CurrentVersion != "2.2.0" || res.HasUpdate {
		t.Fatalf("unexpected result: %+v", res)
	}
	got, _, _ := env.db.GetInstance(inst.InstanceID)
	if got.Version != "2.2.0" {
		t.Fatalf("observed version should be synced, store has %q", got.Version)
	}
}

func TestRefreshAllToolVersionsKeepsOldOnProbeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	if _, err := env.reg.DetectAndPersistSingle(ctx, "claude-code"); err != nil {
		t.Fatal(err)
	}
	// break the per-path probe; the pass must keep the old version
	env.exec.unset("/usr/local/bin/claude --version")

	statuses, err := env.reg.RefreshAllToolVersions(ctx)
	if err != nil {
		t.Fatalf("refresh versions: %v", err)
	}
	if len(statuses) != 1 || statuses[0].Version != "2.0.61" {
		t.Fatalf("old version should be retained: %+v", statuses)
	}
}

func TestDetectSingleToolWithCache(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	if _, err := env.reg.DetectAndPersistSingle(ctx, "claude-code"); err != nil {
		t.Fatal(err)
	}
	before := env.exec.callCount()

	status, err := env.reg.DetectSingleToolWithCache(ctx, "claude-code", false)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Installed || env.exec.callCount() != before {
		t.Fatalf("cached path must not probe: %+v", status)
	}

	if _, err := env.reg.DetectSingleToolWithCache(ctx, "claude-code", true); err != nil {
		t.Fatal(err)
	}
	if env.exec.callCount() == before {
		t.Fatal("force redetect must probe")
	}
}

func TestRefreshAllReturnsGroupedView(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	ctx := context.Background()

	grouped, err := env.reg.RefreshAll(ctx)
	if err != nil {
		t.Fatalf("refresh all: %v", err)
	}
	if len(grouped) != len(tools.Catalog) {
		t.Fatalf("expected a group per tool, got %d", len(grouped))
	}
	claude := grouped["claude-code"]
	if len(claude) != 1 || !claude[0].Installed || claude[0].Version != "2.0.61" {
		t.Fatalf("unexpected claude group: %+v", claude)
	}
	if len(grouped["codex"]) != 0 {
		t.Fatalf("undetected tool should have an empty group: %+v", grouped["codex"])
	}
	if env.mutations == 0 {
		t.Fatal("the refresh persists, so the invalidation hook must fire")
	}
}

func TestDetectInstallMethodsSkipsUnknown(t *testing.T) {
	env := newTestEnv(t)
	env.exec.set(lookup("claude"), ok("/opt/homebrew/bin/claude\n"))

	methods, err := env.reg.DetectInstallMethods(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := methods["claude-code"]; got != tools.MethodBrew {
		t.Fatalf("claude method = %q, want brew", got)
	}
	if _, ok := methods["codex"]; ok {
		t.Fatal("undetectable tools must be absent, not empty")
	}
}

func TestConcurrentDetectAndPersist(t *testing.T) {
	env := newTestEnv(t)
	env.claudeInstalled("/usr/local/bin/claude")
	env.exec.set(lookup("codex"), ok("/usr/local/bin/codex\n"))
	env.exec.set("codex --version", ok("codex-cli 0.65.0\n"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.reg.DetectAndPersistLocalTools(ctx); err != nil {
				t.Errorf("concurrent detect: %v", err)
			}
		}()
	}
	wg.Wait()

	grouped, err := env.reg.GetAllGrouped()
	if err != nil {
		t.Fatal(err)
	}
	for id, instances := range grouped {
		locals := 0
		for _, inst := range instances {
			if inst.ToolType == tools.TypeLocal {
				locals++
			}
		}
		if locals > 1 {
			t.Fatalf("concurrent batches left %d local rows for %s", locals, id)
		}
	}
	if len(env.localRows(t, "claude-code")) != 1 {
		t.Fatal("claude should have exactly one local row")
	}
}
