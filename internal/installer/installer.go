// Package installer dispatches tool updates to the package manager that owns
// the instance. It does not decide whether an update is wanted; the registry
// does.
package installer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toolctl/internal/probe"
	"toolctl/internal/system"
	"toolctl/internal/tools"
)

// Service performs install-method-specific updates.
type Service struct {
	exec    probe.Executor
	timeout time.Duration
}

// NewService builds an installer over the given executor.
func NewService(exec probe.Executor) *Service {
	return &Service{exec: exec, timeout: 5 * time.Minute}
}

// UpdateInstanceByInstaller upgrades the instance using its recorded
// installer. force currently only affects npm (reinstall even when current).
func (s *Service) UpdateInstanceByInstaller(ctx context.Context, inst *tools.ToolInstance, force bool) (tools.UpdateResult, error) {
	tool, ok := tools.ByID(inst.BaseID)
	if !ok {
		return tools.UpdateResult{}, fmt.Errorf("未知工具: %s", inst.BaseID)
	}

	var cmd string
	switch inst.InstallMethod {
	case tools.MethodNpm:
		installer := inst.InstallerPath
		if installer == "" {
			installer = "npm"
		}
		cmd = fmt.Sprintf("%s install -g %s@latest --no-fund --no-audit", installer, tool.Package)
		if force {
			cmd += " --force"
		}
	case tools.MethodBrew:
		installer := inst.InstallerPath
		if installer == "" {
			installer = "brew"
		}
		cmd = fmt.Sprintf("%s upgrade %s", installer, tool.CheckName())
	default:
		return tools.UpdateResult{}, fmt.Errorf("安装方式 %q 不支持自动更新", inst.InstallMethod)
	}

	system.Logger.Info("updating instance", "instance", inst.InstanceID, "cmd", cmd)
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res := s.exec.Execute(cctx, cmd)
	if !res.Success {
		return tools.UpdateResult{}, fmt.Errorf("更新失败 (exit %d): %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	result := tools.UpdateResult{
		Success: true,
		Message: "更新完成",
		ToolID:  inst.BaseID,
	}
	// Re-probe through the instance's own path so we report what this
	// instance now is, not whatever shadows it on PATH.
	if inst.InstallPath != "" {
		vctx, vcancel := context.WithTimeout(ctx, 10*time.Second)
		defer vcancel()
		if vres := s.exec.Execute(vctx, inst.InstallPath+" --version"); vres.Success {
			result.CurrentVersion = tools.ParseVersion(vres.Stdout)
		}
	}
	return result, nil
}
