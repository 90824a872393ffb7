package ui

import (
	"fmt"
	"strings"

	"toolctl/internal/tools"
	appver "toolctl/internal/version"
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("toolctl · CLI 工具仪表板"))
	b.WriteString("\n\n")

	if m.checking && len(m.statuses) == 0 {
		b.WriteString("  " + m.spin.View() + " 正在检测本地工具...\n")
	} else {
		b.WriteString(m.renderStatusCard())
		if m.showInstances {
			b.WriteString("\n")
			b.WriteString(m.renderInstancesCard())
		}
	}

	if m.notice != "" {
		b.WriteString("\n  " + warnStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderBar())
	return b.String()
}

func (m model) renderStatusCard() string {
	var rows []string
	for _, s := range m.statuses {
		icon := errStyle.Render("✗")
		version := mutedStyle.Render("未安装")
		if s.Installed {
			icon = okStyle.Render("✓")
			version = s.Version
			if version == "" {
				version = mutedStyle.Render("版本未知")
			}
		}
		line := fmt.Sprintf("%s %-14s %s", icon, s.Name, version)
		if res, ok := m.updates[s.ID]; ok && res.HasUpdate {
			line += "  " + warnStyle.Render("↑ "+res.LatestVersion)
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		rows = append(rows, mutedStyle.Render("暂无数据"))
	}
	return cardStyle.Render(strings.Join(rows, "\n")) + "\n"
}

func (m model) renderInstancesCard() string {
	var rows []string
	for _, tool := range tools.Catalog {
		for _, inst := range m.instances[tool.ID] {
			loc := "local"
			switch inst.ToolType {
			case tools.TypeWSL:
				loc = "wsl:" + inst.WSLDistro
			case tools.TypeSSH:
				if inst.SSHConfig != nil {
					loc = "ssh:" + inst.SSHConfig.Host
				} else {
					loc = "ssh"
				}
			}
			rows = append(rows, fmt.Sprintf("%-14s %-16s %s", inst.ToolName, loc, mutedStyle.Render(inst.InstallPath)))
		}
	}
	if len(rows) == 0 {
		rows = append(rows, mutedStyle.Render("暂无实例"))
	}
	return cardStyle.Render(strings.Join(rows, "\n")) + "\n"
}

func (m model) renderBar() string {
	left := "r 刷新 · u 检查更新 · i 实例 · q 退出"
	if m.checking {
		left = m.spin.View() + " 检测中"
	}
	right := "v" + appver.AppVersion
	if !m.updatedAt.IsZero() {
		right = m.updatedAt.Format("15:04:05") + " · " + right
	}

	gap := m.width - len([]rune(left)) - len([]rune(right)) - 4
	if gap < 1 {
		gap = 1
	}
	return barStyle.Render(left + strings.Repeat(" ", gap) + right)
}
