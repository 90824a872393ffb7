package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"toolctl/internal/tools"
)

// WSLExecutor probes tools inside WSL distributions. Only meaningful on a
// Windows host with wsl.exe present.
type WSLExecutor struct{}

// NewWSLExecutor returns a WSL executor. Callers must check Available before
// issuing probes.
func NewWSLExecutor() *WSLExecutor { return &WSLExecutor{} }

// Available reports whether the WSL capability exists on this host.
func (w *WSLExecutor) Available() bool {
	_, err := exec.LookPath("wsl.exe")
	if err != nil {
		_, err = exec.LookPath("wsl")
	}
	return err == nil
}

// DetectTool probes the named distro for a command: presence via the distro's
// own `which`, then version via `name --version`. A missing binary is not an
// error; transport failures are.
func (w *WSLExecutor) DetectTool(ctx context.Context, distro, name string) (installed bool, version, installPath string, err error) {
	run := func(args ...string) (string, error) {
		full := append([]string{"-d", distro, "--"}, args...)
		out, err := exec.CommandContext(ctx, "wsl", full...).CombinedOutput()
		return strings.TrimSpace(string(out)), err
	}

	path, whichErr := run("which", name)
	if whichErr != nil || path == "" {
		// Distinguish "not installed" from "distro unreachable": which
		// exits 1 for a missing binary but still runs.
		if path == "" && whichErr == nil {
			return false, "", "", nil
		}
		if ee, ok := whichErr.(*exec.ExitError); ok && ee.ExitCode() == 1 {
			return false, "", "", nil
		}
		return false, "", "", fmt.Errorf("WSL 发行版 %s 探测失败: %w", distro, whichErr)
	}

	out, verErr := run(name, "--version")
	if verErr != nil {
		// Binary exists but refuses --version; report installed without one.
		return true, "", path, nil
	}
	return true, tools.ParseVersion(out), path, nil
}
