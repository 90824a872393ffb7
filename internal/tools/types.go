package tools

import (
	"fmt"
	"strings"
	"time"
)

// ToolType is the execution environment an instance lives in.
type ToolType string

const (
	TypeLocal ToolType = "local"
	TypeWSL   ToolType = "wsl"
	TypeSSH   ToolType = "ssh"
)

// InstallMethod describes how a tool binary got onto the machine.
type InstallMethod string

const (
	MethodNpm      InstallMethod = "npm"
	MethodBrew     InstallMethod = "brew"
	MethodOfficial InstallMethod = "official"
	MethodOther    InstallMethod = "other"
)

// ParseInstallMethod maps user input to an InstallMethod.
func ParseInstallMethod(s string) (InstallMethod, error) {
	switch InstallMethod(strings.ToLower(strings.TrimSpace(s))) {
	case MethodNpm:
		return MethodNpm, nil
	case MethodBrew:
		return MethodBrew, nil
	case MethodOfficial:
		return MethodOfficial, nil
	case MethodOther:
		return MethodOther, nil
	}
	return "", fmt.Errorf("未知的安装方式: %q", s)
}

// Tool is the static descriptor of a supported CLI. The catalog is fixed at
// process start and never mutated.
type Tool struct {
	ID           string
	Name         string
	CheckCommand string   // e.g. "claude --version"
	Package      string   // npm package name for fallback detection
	Binaries     []string // candidate binary names in PATH
}

// CheckName returns the executable name of the check command.
func (t Tool) CheckName() string {
	name, _, _ := strings.Cut(t.CheckCommand, " ")
	return name
}

// SSHConfig identifies a remote host an instance lives on.
type SSHConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	User string `json:"user"`
	// KeyPath is optional; empty means agent/default key.
	KeyPath string `json:"key_path,omitempty"`
}

// ToolInstance is one concrete, addressable occurrence of a tool in a
// specific environment. The instance store is the durable owner; code holds
// instances only for the duration of one operation.
type ToolInstance struct {
	InstanceID    string        `json:"instance_id"`
	BaseID        string        `json:"base_id"`
	ToolName      string        `json:"tool_name"`
	ToolType      ToolType      `json:"tool_type"`
	InstallMethod InstallMethod `json:"install_method,omitempty"`
	Installed     bool          `json:"installed"`
	Version       string        `json:"version,omitempty"`
	InstallPath   string        `json:"install_path,omitempty"`
	InstallerPath string        `json:"installer_path,omitempty"`
	WSLDistro     string        `json:"wsl_distro,omitempty"`
	SSHConfig     *SSHConfig    `json:"ssh_config,omitempty"`
	IsBuiltin     bool          `json:"is_builtin"`
	CreatedAt     int64         `json:"created_at"`
	UpdatedAt     int64         `json:"updated_at"`
}

// NewLocalInstance builds a detection-result instance. The timestamp
// discriminator keeps ids unique across repeated detections.
func NewLocalInstance(tool Tool, installed bool, version, installPath string) ToolInstance {
	now := time.Now().Unix()
	return ToolInstance{
		InstanceID:  fmt.Sprintf("%s-local-%d", tool.ID, now),
		BaseID:      tool.ID,
		ToolName:    tool.Name,
		ToolType:    TypeLocal,
		Installed:   installed,
		Version:     version,
		InstallPath: installPath,
		IsBuiltin:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewWSLInstance builds an instance discovered inside a WSL distribution.
// The distro name doubles as the id discriminator so one (tool, distro) pair
// maps to exactly one row.
func NewWSLInstance(tool Tool, distro string, installed bool, version, installPath string) ToolInstance {
	now := time.Now().Unix()
	return ToolInstance{
		InstanceID:  fmt.Sprintf("%s-wsl-%s", tool.ID, distro),
		BaseID:      tool.ID,
		ToolName:    tool.Name,
		ToolType:    TypeWSL,
		Installed:   installed,
		Version:     version,
		InstallPath: installPath,
		WSLDistro:   distro,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewSSHInstance builds a user-added remote instance. No detection is done;
// Installed stays false until a future probe fills it in.
func NewSSHInstance(tool Tool, cfg SSHConfig) ToolInstance {
	now := time.Now().Unix()
	return ToolInstance{
		InstanceID: fmt.Sprintf("%s-ssh-%s-%d", tool.ID, cfg.Host, cfg.Port),
		BaseID:     tool.ID,
		ToolName:   tool.Name,
		ToolType:   TypeSSH,
		SSHConfig:  &cfg,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks the per-type discriminator invariant: WSL instances carry a
// distro and no SSH config, SSH instances the reverse, local ones neither.
func (i ToolInstance) Validate() error {
	switch i.ToolType {
	case TypeLocal:
		if i.WSLDistro != "" || i.SSHConfig != nil {
			return fmt.Errorf("本地实例不应携带 wsl_distro 或 ssh_config: %s", i.InstanceID)
		}
	case TypeWSL:
		if i.WSLDistro == "" || i.SSHConfig != nil {
			return fmt.Errorf("WSL 实例必须且仅携带 wsl_distro: %s", i.InstanceID)
		}
	case TypeSSH:
		if i.SSHConfig == nil || i.WSLDistro != "" {
			return fmt.Errorf("SSH 实例必须且仅携带 ssh_config: %s", i.InstanceID)
		}
	default:
		return fmt.Errorf("未知的实例类型: %q", i.ToolType)
	}
	return nil
}

// ToolStatus is the lightweight read model consumed by dashboards.
type ToolStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
}

// UpdateResult reports the outcome of an update or update-check.
type UpdateResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	HasUpdate      bool   `json:"has_update"`
	CurrentVersion string `json:"current_version,omitempty"`
	LatestVersion  string `json:"latest_version,omitempty"`
	MirrorVersion  string `json:"mirror_version,omitempty"`
	MirrorIsStale  bool   `json:"mirror_is_stale,omitempty"`
	ToolID         string `json:"tool_id,omitempty"`
}

// ToolCandidate is an executable found by a filesystem scan, paired with its
// probed version and a suggested installer. Never persisted.
type ToolCandidate struct {
	ToolPath      string        `json:"tool_path"`
	InstallerPath string        `json:"installer_path,omitempty"`
	InstallMethod InstallMethod `json:"install_method"`
	Version       string        `json:"version"`
}
