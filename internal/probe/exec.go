// Package probe holds the command-execution primitive every detector runs
// through. It knows nothing about tools; it runs a command line in a target
// environment and reports raw output.
package probe

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"toolctl/internal/platform"
)

// Result is the raw outcome of one command execution.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs a shell command line and captures its output. Implementations
// decide the environment (local shell, WSL distro, remote host) and any
// timeout bounding; callers impose none.
type Executor interface {
	Execute(ctx context.Context, command string) Result
}

// CommandExecutor runs commands through the platform shell with the enhanced
// PATH, so binaries installed by Homebrew, npm-global or version managers are
// found even when the parent process has a minimal environment.
type CommandExecutor struct {
	platform platform.Info
}

// NewCommandExecutor returns an executor for the current host.
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{platform: platform.Current()}
}

// Execute runs command via "sh -c" (or "cmd /C" on Windows) and never returns
// an error: failures are reported in Result so batch callers can keep going.
func (e *CommandExecutor) Execute(ctx context.Context, command string) Result {
	var cmd *exec.Cmd
	if e.platform.IsWindows() {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	env := os.Environ()
	env = append(env, "PATH="+e.platform.EnhancedPath(), "NO_COLOR=1")
	cmd.Env = env

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	switch {
	case err == nil:
		res.Success = true
	default:
		if ee, ok := err.(*exec.ExitError); ok {
			res.ExitCode = ee.ExitCode()
		} else {
			res.ExitCode = -1
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
	}
	return res
}
