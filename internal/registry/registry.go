// Package registry reconciles live detection results with the persisted
// instance store. It owns conflict resolution, refresh/update workflows and
// the read-model projection; detection itself lives in internal/detect and
// durability in internal/store.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"toolctl/internal/detect"
	"toolctl/internal/installer"
	"toolctl/internal/platform"
	"toolctl/internal/probe"
	"toolctl/internal/release"
	"toolctl/internal/store"
	"toolctl/internal/system"
	"toolctl/internal/tools"
)

// WSLProber is the WSL-flavored probe the registry dispatches to.
type WSLProber interface {
	Available() bool
	DetectTool(ctx context.Context, distro, name string) (installed bool, version, installPath string, err error)
}

// VersionChecker answers what the newest published version of a tool is.
type VersionChecker interface {
	CheckVersion(ctx context.Context, tool tools.Tool) (release.VersionInfo, error)
}

// Updater performs the actual tool upgrade for an instance.
type Updater interface {
	UpdateInstanceByInstaller(ctx context.Context, inst *tools.ToolInstance, force bool) (tools.UpdateResult, error)
}

// Registry coordinates detectors against the instance store.
//
// Concurrency model: batch detection fans out one goroutine per detector and
// joins before touching the store. mu serializes store access for the span of
// one logical read/modify and is never held across a probe, so slow probes
// don't serialize unrelated work. The registry keeps no instance state
// between calls; the store is the single source of truth.
type Registry struct {
	mu        sync.Mutex
	db        *store.InstanceDB
	detectors *detect.Registry
	exec      probe.Executor
	wsl       WSLProber
	versions  VersionChecker
	installer Updater
	onMutate  func()
}

// Options overrides the registry's collaborators; zero values pick the real
// implementations over the supplied executor.
type Options struct {
	WSL       WSLProber
	Versions  VersionChecker
	Installer Updater
	// OnMutate runs after every operation that changed the store
	// (status-cache invalidation hook).
	OnMutate func()
}

// New builds a registry over an opened store and initializes the schema.
func New(db *store.InstanceDB, detectors *detect.Registry, exec probe.Executor, opts Options) (*Registry, error) {
	if err := db.InitTables(); err != nil {
		return nil, err
	}
	r := &Registry{
		db:        db,
		detectors: detectors,
		exec:      exec,
		wsl:       opts.WSL,
		versions:  opts.Versions,
		installer: opts.Installer,
		onMutate:  opts.OnMutate,
	}
	if r.wsl == nil {
		r.wsl = probe.NewWSLExecutor()
	}
	if r.versions == nil {
		r.versions = release.NewService(exec)
	}
	if r.installer == nil {
		r.installer = installer.NewService(exec)
	}
	return r, nil
}

func (r *Registry) mutated() {
	if r.onMutate != nil {
		r.onMutate()
	}
}

// HasLocalTools reports whether any local rows exist yet (first-run check).
func (r *Registry) HasLocalTools() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.HasLocalTools()
}

// GetAllGrouped returns every stored instance grouped by base tool id,
// seeding an empty slice for each catalog tool so lookups never need a
// presence check. Store-only; no probes are issued.
func (r *Registry) GetAllGrouped() (map[string][]tools.ToolInstance, error) {
	r.mu.Lock()
	instances, err := r.db.GetAllInstances()
	r.mu.Unlock()
	if err != nil {
		system.Logger.Warn("reading instances failed, using empty list", "err", err)
		instances = nil
	}

	grouped := make(map[string][]tools.ToolInstance, len(tools.Catalog))
	for _, t := range tools.Catalog {
		grouped[t.ID] = []tools.ToolInstance{}
	}
	for _, inst := range instances {
		grouped[inst.BaseID] = append(grouped[inst.BaseID], inst)
	}
	return grouped, nil
}

// DetectSingle runs one detector to completion and builds a fresh builtin
// local instance. Pure computation: nothing is persisted.
func (r *Registry) DetectSingle(ctx context.Context, d detect.Detector) tools.ToolInstance {
	tool, _ := tools.ByID(d.ToolID())

	installed := d.IsInstalled(ctx, r.exec)

	var version, installPath string
	var method tools.InstallMethod
	if installed {
		version = d.Version(ctx, r.exec)
		installPath = d.InstallPath(ctx, r.exec)
		method = d.InstallMethod(ctx, r.exec)
	}

	inst := tools.NewLocalInstance(tool, installed, version, installPath)
	inst.InstallMethod = method

	// A known package manager implies a locatable installer binary; failure
	// to find it just leaves the field empty.
	if installed {
		switch method {
		case tools.MethodNpm:
			inst.InstallerPath = r.lookupInstaller(ctx, "npm")
		case tools.MethodBrew:
			inst.InstallerPath = r.lookupInstaller(ctx, "brew")
		}
	}

	system.Logger.Debug("detected tool",
		"tool", tool.ID, "installed", installed, "version", version,
		"path", installPath, "method", method, "installer", inst.InstallerPath)
	return inst
}

func (r *Registry) lookupInstaller(ctx context.Context, name string) string {
	res := r.exec.Execute(ctx, platform.Current().LookupCommand(name))
	if !res.Success {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	return strings.TrimSpace(line)
}

// detectAll fans out one detection task per registered detector and joins.
// Result order follows the detector registry, not completion order.
func (r *Registry) detectAll(ctx context.Context) []tools.ToolInstance {
	detectors := r.detectors.All()
	results := make([]tools.ToolInstance, len(detectors))
	var wg sync.WaitGroup
	for i, d := range detectors {
		wg.Add(1)
		go func(i int, d detect.Detector) {
			defer wg.Done()
			results[i] = r.DetectSingle(ctx, d)
		}(i, d)
	}
	wg.Wait()
	return results
}

// DetectAndPersistLocalTools detects every registered tool concurrently and
// upserts the results. Per-instance write failures are logged and skipped so
// one bad row cannot sink the whole batch.
func (r *Registry) DetectAndPersistLocalTools(ctx context.Context) ([]tools.ToolInstance, error) {
	system.Logger.Info("detecting local tools", "count", len(r.detectors.All()))
	results := r.detectAll(ctx)

	// Local rows are replaced wholesale per detection cycle: without the
	// delete, timestamped ids would accumulate one row per run.
	r.mu.Lock()
	existing, err := r.db.GetLocalInstances()
	if err != nil {
		system.Logger.Warn("reading local instances failed", "err", err)
		existing = nil
	}
	for i := range results {
		for _, old := range existing {
			if old.BaseID == results[i].BaseID && old.InstanceID != results[i].InstanceID {
				if derr := r.db.DeleteInstance(old.InstanceID); derr != nil {
					system.Logger.Warn("stale instance delete failed", "instance", old.InstanceID, "err", derr)
				}
			}
		}
		if err := r.db.UpsertInstance(&results[i]); err != nil {
			system.Logger.Warn("persisting instance failed", "instance", results[i].InstanceID, "err", err)
		}
	}
	r.mu.Unlock()
	r.mutated()

	return results, nil
}

// DetectAndPersistSingle re-detects one tool from scratch:
//
//  1. deletes the tool's existing local rows (idempotent cleanup),
//  2. detects,
//  3. rejects the result when its path is already claimed by another tool,
//  4. persists only when installed.
func (r *Registry) DetectAndPersistSingle(ctx context.Context, toolID string) (tools.ToolInstance, error) {
	d, ok := r.detectors.Get(toolID)
	if !ok {
		return tools.ToolInstance{}, fmt.Errorf("%w: 工具 %s 没有检测器", ErrNotFound, toolID)
	}

	r.mu.Lock()
	all, err := r.db.GetAllInstances()
	if err != nil {
		r.mu.Unlock()
		return tools.ToolInstance{}, err
	}
	deleted := false
	for _, inst := range all {
		if inst.BaseID == toolID && inst.ToolType == tools.TypeLocal {
			system.Logger.Info("removing stale local instance", "instance", inst.InstanceID)
			if derr := r.db.DeleteInstance(inst.InstanceID); derr != nil {
				system.Logger.Warn("stale instance delete failed", "instance", inst.InstanceID, "err", derr)
			} else {
				deleted = true
			}
		}
	}
	r.mu.Unlock()
	// The store changed already; later error returns (conflict, upsert
	// failure) must not leave the status cache serving the deleted rows.
	if deleted {
		r.mutated()
	}

	inst := r.DetectSingle(ctx, d)

	if inst.Installed && inst.InstallPath != "" {
		r.mu.Lock()
		all, err = r.db.GetAllInstances()
		r.mu.Unlock()
		if err != nil {
			return tools.ToolInstance{}, err
		}
		for _, other := range all {
			if other.ToolType == tools.TypeLocal && other.BaseID != toolID && other.InstallPath == inst.InstallPath {
				return tools.ToolInstance{}, fmt.Errorf("%w: 路径 %s 已被 %s 使用",
					ErrConflict, inst.InstallPath, other.ToolName)
			}
		}
	}

	if inst.Installed {
		r.mu.Lock()
		err = r.db.UpsertInstance(&inst)
		r.mu.Unlock()
		if err != nil {
			return tools.ToolInstance{}, err
		}
		r.mutated()
	}
	return inst, nil
}

// RefreshLocalTools re-detects everything and reconciles the store: local
// rows not present among the freshly detected installed results are removed
// (the tool was uninstalled), installed results are upserted. Not-installed
// results are never persisted.
func (r *Registry) RefreshLocalTools(ctx context.Context) ([]tools.ToolInstance, error) {
	system.Logger.Info("refreshing local tools")
	results := r.detectAll(ctx)

	r.mu.Lock()
	existing, err := r.db.GetLocalInstances()
	if err != nil {
		system.Logger.Warn("reading local instances failed", "err", err)
		existing = nil
	}

	detected := make(map[string]bool, len(results))
	for _, inst := range results {
		if inst.Installed {
			detected[inst.InstanceID] = true
		}
	}
	for _, old := range existing {
		if !detected[old.InstanceID] {
			system.Logger.Info("tool gone, removing instance", "instance", old.InstanceID)
			if derr := r.db.DeleteInstance(old.InstanceID); derr != nil {
				system.Logger.Warn("instance delete failed", "instance", old.InstanceID, "err", derr)
			}
		}
	}

	installed := make([]tools.ToolInstance, 0, len(results))
	for i := range results {
		if !results[i].Installed {
			continue
		}
		if uerr := r.db.UpsertInstance(&results[i]); uerr != nil {
			system.Logger.Warn("persisting instance failed", "instance", results[i].InstanceID, "err", uerr)
		}
		installed = append(installed, results[i])
	}
	r.mu.Unlock()
	r.mutated()

	system.Logger.Info("local refresh done", "installed", len(installed))
	return installed, nil
}

// RefreshAll re-detects local tools and returns the full grouped view.
func (r *Registry) RefreshAll(ctx context.Context) (map[string][]tools.ToolInstance, error) {
	if _, err := r.DetectAndPersistLocalTools(ctx); err != nil {
		return nil, err
	}
	return r.GetAllGrouped()
}

// DetectInstallMethods probes the install method of every tool, skipping
// tools whose method cannot be determined.
func (r *Registry) DetectInstallMethods(ctx context.Context) (map[string]tools.InstallMethod, error) {
	methods := make(map[string]tools.InstallMethod)
	for _, d := range r.detectors.All() {
		if m := d.InstallMethod(ctx, r.exec); m != "" {
			methods[d.ToolID()] = m
		}
	}
	return methods, nil
}

// AddWSLInstance probes a WSL distro for the tool and inserts the result.
// Duplicate (tool, distro) pairs surface as a conflict from the store's id
// uniqueness.
func (r *Registry) AddWSLInstance(ctx context.Context, baseID, distro string) (tools.ToolInstance, error) {
	if !r.wsl.Available() {
		return tools.ToolInstance{}, fmt.Errorf("%w: WSL 不可用，请确认已安装", ErrBackendUnavailable)
	}
	tool, ok := tools.ByID(baseID)
	if !ok {
		return tools.ToolInstance{}, fmt.Errorf("%w: 未知工具 %s", ErrNotFound, baseID)
	}

	installed, version, installPath, err := r.wsl.DetectTool(ctx, distro, tool.CheckName())
	if err != nil {
		return tools.ToolInstance{}, fmt.Errorf("%w: %v", ErrProbeFailure, err)
	}

	inst := tools.NewWSLInstance(tool, distro, installed, version, installPath)

	r.mu.Lock()
	err = r.db.AddInstance(&inst)
	r.mu.Unlock()
	if err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			return tools.ToolInstance{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return tools.ToolInstance{}, err
	}
	r.mutated()
	return inst, nil
}

// AddSSHInstance stores an SSH-typed instance without probing it. Detection
// over SSH is a later stage; until then the instance reports not-installed.
func (r *Registry) AddSSHInstance(_ context.Context, baseID string, cfg tools.SSHConfig) (tools.ToolInstance, error) {
	tool, ok := tools.ByID(baseID)
	if !ok {
		return tools.ToolInstance{}, fmt.Errorf("%w: 未知工具 %s", ErrNotFound, baseID)
	}
	inst := tools.NewSSHInstance(tool, cfg)

	r.mu.Lock()
	defer r.mu.Unlock()
	exists, err := r.db.InstanceExists(inst.InstanceID)
	if err != nil {
		return tools.ToolInstance{}, err
	}
	if exists {
		return tools.ToolInstance{}, fmt.Errorf("%w: SSH 实例已存在: %s", ErrConflict, inst.InstanceID)
	}
	if err := r.db.AddInstance(&inst); err != nil {
		return tools.ToolInstance{}, err
	}
	r.mutated()
	return inst, nil
}

// DeleteInstance removes a user-added SSH instance. Builtin and non-SSH
// instances are not deletable through this path.
func (r *Registry) DeleteInstance(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, found, err := r.db.GetInstance(id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: 实例不存在: %s", ErrNotFound, id)
	}
	if inst.ToolType != tools.TypeSSH {
		return fmt.Errorf("%w: 仅允许删除 SSH 类型实例", ErrPreconditionFailed)
	}
	if inst.IsBuiltin {
		return fmt.Errorf("%w: 内置实例不可删除", ErrPreconditionFailed)
	}
	if err := r.db.DeleteInstance(id); err != nil {
		return err
	}
	r.mutated()
	return nil
}

// findLocalInstance fetches a local instance by id under the lock.
func (r *Registry) findLocalInstance(id string) (tools.ToolInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, found, err := r.db.GetInstance(id)
	if err != nil {
		return tools.ToolInstance{}, err
	}
	if !found || inst.ToolType != tools.TypeLocal {
		return tools.ToolInstance{}, fmt.Errorf("%w: 未找到本地实例: %s", ErrNotFound, id)
	}
	return inst, nil
}

// UpdateInstance delegates the upgrade to the installer service and writes
// the reported version back. Installer failures propagate; the store is left
// untouched on failure.
func (r *Registry) UpdateInstance(ctx context.Context, id string, force bool) (tools.UpdateResult, error) {
	inst, err := r.findLocalInstance(id)
	if err != nil {
		return tools.UpdateResult{}, err
	}

	result, err := r.installer.UpdateInstanceByInstaller(ctx, &inst, force)
	if err != nil {
		return tools.UpdateResult{}, err
	}

	if result.Success && result.CurrentVersion != "" {
		updated := inst
		updated.Version = result.CurrentVersion
		updated.UpdatedAt = time.Now().Unix()
		r.mu.Lock()
		if uerr := r.db.UpdateInstance(&updated); uerr != nil {
			system.Logger.Warn("writing new version failed", "instance", id, "err", uerr)
		}
		r.mu.Unlock()
		r.mutated()
	}
	return result, nil
}

// CheckUpdateForInstance re-derives the instance's current version through
// its own install path and compares it with the newest published release.
//
// Policy: a probe failure when the instance has a path is a hard error (a
// broken binary should be visible, not papered over); with no path at all
// the stored version is trusted. A remote-check failure is downgraded to a
// message in the result.
func (r *Registry) CheckUpdateForInstance(ctx context.Context, id string) (tools.UpdateResult, error) {
	inst, err := r.findLocalInstance(id)
	if err != nil {
		return tools.UpdateResult{}, err
	}

	current := inst.Version
	if inst.InstallPath != "" {
		cmd := inst.InstallPath + " --version"
		res := r.exec.Execute(ctx, cmd)
		if !res.Success {
			return tools.UpdateResult{}, fmt.Errorf("%w: 无法执行 %s", ErrProbeFailure, cmd)
		}
		current = tools.ParseVersion(strings.TrimSpace(res.Stdout))
	}

	tool, ok := tools.ByID(inst.BaseID)
	if !ok {
		return tools.UpdateResult{}, fmt.Errorf("%w: 未知工具 %s", ErrNotFound, inst.BaseID)
	}

	result := tools.UpdateResult{
		Success:        true,
		CurrentVersion: current,
		ToolID:         inst.BaseID,
	}
	info, verr := r.versions.CheckVersion(ctx, tool)
	if verr != nil {
		result.Message = fmt.Sprintf("无法检查更新: %v", verr)
	} else {
		result.Message = "检查完成"
		result.LatestVersion = info.LatestVersion
		result.MirrorVersion = info.MirrorVersion
		result.MirrorIsStale = info.MirrorIsStale
		if current != "" && info.LatestVersion != "" {
			result.HasUpdate = tools.VersionLess(current, info.LatestVersion)
		} else {
			result.HasUpdate = info.HasUpdate
		}
	}

	// Sync the freshly observed version back, best-effort.
	if current != inst.Version {
		updated := inst
		updated.Version = current
		updated.UpdatedAt = time.Now().Unix()
		r.mu.Lock()
		if uerr := r.db.UpdateInstance(&updated); uerr != nil {
			system.Logger.Warn("version sync failed", "instance", id, "err", uerr)
		} else {
			system.Logger.Info("version synced", "instance", id, "from", inst.Version, "to", current)
		}
		r.mu.Unlock()
		r.mutated()
	}
	return result, nil
}

// RefreshAllToolVersions re-probes every local instance through its stored
// path and persists observed changes.
//
// Policy: unlike CheckUpdateForInstance, a per-tool probe failure here keeps
// the old version and moves on — one broken tool must not fail the pass.
func (r *Registry) RefreshAllToolVersions(ctx context.Context) ([]tools.ToolStatus, error) {
	r.mu.Lock()
	all, err := r.db.GetAllInstances()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	changed := false
	var statuses []tools.ToolStatus
	for _, inst := range all {
		if inst.ToolType != tools.TypeLocal {
			continue
		}

		newVersion := inst.Version
		if inst.InstallPath != "" {
			res := r.exec.Execute(ctx, inst.InstallPath+" --version")
			if res.Success {
				newVersion = tools.ParseVersion(strings.TrimSpace(res.Stdout))
			} else {
				system.Logger.Warn("version probe failed, keeping old", "tool", inst.ToolName)
			}
		} else {
			system.Logger.Warn("instance has no install path, keeping old version", "tool", inst.ToolName)
		}

		if newVersion != inst.Version {
			updated := inst
			updated.Version = newVersion
			updated.UpdatedAt = time.Now().Unix()
			r.mu.Lock()
			if uerr := r.db.UpdateInstance(&updated); uerr != nil {
				system.Logger.Warn("version update failed", "instance", inst.InstanceID, "err", uerr)
			} else {
				changed = true
			}
			r.mu.Unlock()
		}

		statuses = append(statuses, tools.ToolStatus{
			ID:        inst.BaseID,
			Name:      inst.ToolName,
			Installed: inst.Installed,
			Version:   newVersion,
		})
	}
	if changed {
		r.mutated()
	}
	return statuses, nil
}

// GetLocalToolStatus projects stored local instances down to the dashboard
// read model, defaulting every catalog tool that has no local row to
// not-installed. Store-only; never probes.
func (r *Registry) GetLocalToolStatus() ([]tools.ToolStatus, error) {
	grouped, err := r.GetAllGrouped()
	if err != nil {
		return nil, err
	}

	statuses := make([]tools.ToolStatus, 0, len(r.detectors.All()))
	for _, d := range r.detectors.All() {
		status := tools.ToolStatus{ID: d.ToolID(), Name: d.ToolName()}
		for _, inst := range grouped[d.ToolID()] {
			if inst.ToolType == tools.TypeLocal {
				status.Installed = inst.Installed
				status.Version = inst.Version
				break
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// RefreshAndGetLocalStatus re-detects everything and returns the projected
// statuses (the dashboard refresh button).
func (r *Registry) RefreshAndGetLocalStatus(ctx context.Context) ([]tools.ToolStatus, error) {
	instances, err := r.RefreshLocalTools(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]tools.ToolStatus, 0, len(r.detectors.All()))
	for _, d := range r.detectors.All() {
		status := tools.ToolStatus{ID: d.ToolID(), Name: d.ToolName()}
		for _, inst := range instances {
			if inst.BaseID == d.ToolID() {
				status.Installed = inst.Installed
				status.Version = inst.Version
				break
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// ScanToolCandidates walks the filesystem for every executable matching the
// tool, version-probes each (skipping failures) and suggests an installer.
// Results are ephemeral; the user picks one to register manually.
func (r *Registry) ScanToolCandidates(ctx context.Context, toolID string) ([]tools.ToolCandidate, error) {
	tool, ok := tools.ByID(toolID)
	if !ok {
		return nil, fmt.Errorf("%w: 未知工具 %s", ErrNotFound, toolID)
	}

	var candidates []tools.ToolCandidate
	for _, path := range platform.ScanToolExecutables(tool) {
		res := r.exec.Execute(ctx, path+" --version")
		if !res.Success {
			continue
		}
		version := tools.ParseVersion(strings.TrimSpace(res.Stdout))
		if version == "" {
			continue
		}

		cand := tools.ToolCandidate{
			ToolPath:      path,
			InstallMethod: tools.MethodOfficial,
			Version:       version,
		}
		if installers := platform.ScanInstallerPaths(path); len(installers) > 0 {
			cand.InstallerPath = installers[0].Path
			cand.InstallMethod = installers[0].Type
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// ValidateToolPath is the sole gate before manually registering an instance:
// the path must be a regular file whose `--version` output contains a digit.
func (r *Registry) ValidateToolPath(ctx context.Context, path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: 路径不存在: %s", ErrPreconditionFailed, path)
	}
	if st.IsDir() {
		return "", fmt.Errorf("%w: 路径不是文件: %s", ErrPreconditionFailed, path)
	}

	res := r.exec.Execute(ctx, path+" --version")
	if !res.Success {
		return "", fmt.Errorf("%w: 命令执行失败，退出码 %d", ErrProbeFailure, res.ExitCode)
	}
	version := strings.TrimSpace(res.Stdout)
	if version == "" {
		return "", fmt.Errorf("%w: 无法获取版本信息", ErrProbeFailure)
	}
	if !strings.ContainsAny(version, "0123456789") {
		return "", fmt.Errorf("%w: 无效的版本信息: %s", ErrProbeFailure, version)
	}
	return version, nil
}

// AddToolInstance registers a manually located tool. The path is validated,
// the installer path is required for package-manager methods, and the global
// one-path-one-instance invariant is enforced before the insert.
func (r *Registry) AddToolInstance(ctx context.Context, toolID, path string, method tools.InstallMethod, installerPath string) (tools.ToolStatus, error) {
	tool, ok := tools.ByID(toolID)
	if !ok {
		return tools.ToolStatus{}, fmt.Errorf("%w: 未知工具 %s", ErrNotFound, toolID)
	}

	version, err := r.ValidateToolPath(ctx, path)
	if err != nil {
		return tools.ToolStatus{}, err
	}

	if method != tools.MethodOther {
		if installerPath == "" {
			return tools.ToolStatus{}, fmt.Errorf("%w: 非「其他」安装方式必须提供安装器路径", ErrPreconditionFailed)
		}
		st, serr := os.Stat(installerPath)
		if serr != nil {
			return tools.ToolStatus{}, fmt.Errorf("%w: 安装器路径不存在: %s", ErrPreconditionFailed, installerPath)
		}
		if st.IsDir() {
			return tools.ToolStatus{}, fmt.Errorf("%w: 安装器路径不是文件: %s", ErrPreconditionFailed, installerPath)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.db.GetAllInstances()
	if err != nil {
		return tools.ToolStatus{}, err
	}
	for _, other := range all {
		if other.ToolType == tools.TypeLocal && other.InstallPath == path {
			return tools.ToolStatus{}, fmt.Errorf("%w: 路径 %s 已被 %s 使用", ErrConflict, path, other.ToolName)
		}
	}

	inst := tools.NewLocalInstance(tool, true, version, path)
	inst.InstallMethod = method
	inst.InstallerPath = installerPath
	inst.IsBuiltin = false

	if err := r.db.AddInstance(&inst); err != nil {
		return tools.ToolStatus{}, err
	}
	r.mutated()

	return tools.ToolStatus{ID: tool.ID, Name: tool.Name, Installed: true, Version: version}, nil
}

// DetectSingleToolWithCache short-circuits to the store when an installed
// local row already exists; forceRedetect bypasses that and runs a full
// single-tool detection.
func (r *Registry) DetectSingleToolWithCache(ctx context.Context, toolID string, forceRedetect bool) (tools.ToolStatus, error) {
	if !forceRedetect {
		r.mu.Lock()
		all, err := r.db.GetAllInstances()
		r.mu.Unlock()
		if err != nil {
			return tools.ToolStatus{}, err
		}
		for _, inst := range all {
			if inst.BaseID == toolID && inst.ToolType == tools.TypeLocal && inst.Installed {
				system.Logger.Info("tool already in store, skipping detection", "tool", inst.ToolName)
				return tools.ToolStatus{ID: toolID, Name: inst.ToolName, Installed: true, Version: inst.Version}, nil
			}
		}
	}

	inst, err := r.DetectAndPersistSingle(ctx, toolID)
	if err != nil {
		return tools.ToolStatus{}, err
	}
	return tools.ToolStatus{ID: toolID, Name: inst.ToolName, Installed: inst.Installed, Version: inst.Version}, nil
}
