package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"toolctl/internal/registry"
	"toolctl/internal/tools"
)

// Commands

// loadStatusCmd reads the projected statuses from the store. Fast: no probes.
func loadStatusCmd(reg *registry.Registry) tea.Cmd {
	return func() tea.Msg {
		statuses, err := reg.GetLocalToolStatus()
		return statusMsg{statuses: statuses, err: err}
	}
}

// refreshCmd runs a full detection pass and returns the fresh statuses.
func refreshCmd(reg *registry.Registry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		statuses, err := reg.RefreshAndGetLocalStatus(ctx)
		return statusMsg{statuses: statuses, err: err}
	}
}

// loadInstancesCmd fetches the grouped instance view.
func loadInstancesCmd(reg *registry.Registry) tea.Cmd {
	return func() tea.Msg {
		grouped, err := reg.GetAllGrouped()
		return instancesMsg{grouped: grouped, err: err}
	}
}

// checkUpdatesCmd fires one update check per stored local instance.
func checkUpdatesCmd(reg *registry.Registry) tea.Cmd {
	return func() tea.Msg {
		grouped, err := reg.GetAllGrouped()
		if err != nil {
			return noticeMsg("读取实例失败: " + err.Error())
		}
		var cmds []tea.Cmd
		for toolID, instances := range grouped {
			for _, inst := range instances {
				if inst.ToolType != tools.TypeLocal || !inst.Installed {
					continue
				}
				toolID, id := toolID, inst.InstanceID
				cmds = append(cmds, func() tea.Msg {
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					result, err := reg.CheckUpdateForInstance(ctx, id)
					return updateCheckMsg{toolID: toolID, result: result, err: err}
				})
				break
			}
		}
		if len(cmds) == 0 {
			return noticeMsg("没有可检查的本地实例")
		}
		return tea.Batch(cmds...)()
	}
}
