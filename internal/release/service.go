// Package release answers "what is the newest published version" for a tool,
// consulting the npm registry and its npmmirror mirror.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"toolctl/internal/probe"
	"toolctl/internal/tools"
)

const mirrorRegistry = "https://registry.npmmirror.com"

// VersionInfo is the remote version picture for one tool.
type VersionInfo struct {
	HasUpdate     bool
	LatestVersion string
	MirrorVersion string
	MirrorIsStale bool
}

// Service checks published versions through npm. All probes run via the
// injected executor so tests can script them.
type Service struct {
	exec    probe.Executor
	timeout time.Duration
}

// NewService builds a version service over the given executor.
func NewService(exec probe.Executor) *Service {
	return &Service{exec: exec, timeout: 8 * time.Second}
}

// CheckVersion fetches the latest published version of the tool and compares
// it with what the tool itself reports. Mirror lookup failures are tolerated;
// a registry failure is not.
func (s *Service) CheckVersion(ctx context.Context, tool tools.Tool) (VersionInfo, error) {
	if tool.Package == "" {
		return VersionInfo{}, fmt.Errorf("工具 %s 没有可查询的包名", tool.ID)
	}

	latest, err := s.viewVersion(ctx, tool.Package, "")
	if err != nil {
		return VersionInfo{}, fmt.Errorf("查询最新版本失败: %w", err)
	}

	info := VersionInfo{LatestVersion: latest}

	// Mirror is best-effort: a stale or unreachable mirror must not break
	// the check.
	if mirror, merr := s.viewVersion(ctx, tool.Package, mirrorRegistry); merr == nil {
		info.MirrorVersion = mirror
		info.MirrorIsStale = tools.VersionLess(mirror, latest)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if res := s.exec.Execute(cctx, tool.CheckCommand); res.Success {
		if current := tools.ParseVersion(res.Stdout); current != "" {
			info.HasUpdate = tools.VersionLess(current, latest)
		}
	}
	return info, nil
}

// viewVersion runs `npm view <pkg> version --json`, optionally against an
// alternate registry. npm may answer with a bare JSON string or plain text.
func (s *Service) viewVersion(ctx context.Context, pkg, registry string) (string, error) {
	cmd := fmt.Sprintf("npm view %s version --json", pkg)
	if registry != "" {
		cmd += " --registry=" + registry
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res := s.exec.Execute(cctx, cmd)
	out := strings.TrimSpace(res.Stdout)
	if !res.Success && out == "" {
		return "", fmt.Errorf("npm view 失败: %s", strings.TrimSpace(res.Stderr))
	}

	var v string
	if json.Unmarshal([]byte(out), &v) == nil && v != "" {
		return v, nil
	}
	if line, _, _ := strings.Cut(out, "\n"); strings.TrimSpace(line) != "" {
		return strings.Trim(strings.TrimSpace(line), `"`), nil
	}
	return "", fmt.Errorf("npm view 没有返回版本: %q", out)
}
