package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"toolctl/internal/registry"
	"toolctl/internal/tools"
)

// Model for the status dashboard TUI.
type model struct {
	reg *registry.Registry

	statuses  []tools.ToolStatus
	instances map[string][]tools.ToolInstance
	updates   map[string]tools.UpdateResult

	checking  bool
	updatedAt time.Time
	quitting  bool
	notice    string

	spin   spinner.Model
	width  int
	height int

	showInstances bool
}

// InitialModel builds the dashboard model over a ready registry.
func InitialModel(reg *registry.Registry) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = okStyle
	return model{
		reg:      reg,
		updates:  make(map[string]tools.UpdateResult),
		checking: true,
		spin:     sp,
	}
}

func (m model) Init() tea.Cmd {
	// First run (empty store): probe everything. Later runs serve the stored
	// projection immediately; r re-probes on demand.
	if has, err := m.reg.HasLocalTools(); err == nil && has {
		return tea.Batch(m.spin.Tick, loadStatusCmd(m.reg), loadInstancesCmd(m.reg))
	}
	return tea.Batch(m.spin.Tick, refreshCmd(m.reg), loadInstancesCmd(m.reg))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.checking {
				return m, nil
			}
			m.checking = true
			m.notice = ""
			return m, tea.Batch(m.spin.Tick, refreshCmd(m.reg), loadInstancesCmd(m.reg))
		case "u":
			if m.checking {
				return m, nil
			}
			m.notice = "正在检查更新..."
			return m, checkUpdatesCmd(m.reg)
		case "i":
			m.showInstances = !m.showInstances
			return m, nil
		}

	case statusMsg:
		m.checking = false
		m.updatedAt = time.Now()
		if msg.err != nil {
			m.notice = "检测失败: " + msg.err.Error()
			return m, nil
		}
		m.statuses = msg.statuses
		return m, nil

	case instancesMsg:
		if msg.err == nil {
			m.instances = msg.grouped
		}
		return m, nil

	case updateCheckMsg:
		if msg.err != nil {
			m.notice = "检查更新失败: " + msg.err.Error()
			return m, nil
		}
		m.updates[msg.toolID] = msg.result
		m.notice = ""
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.checking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}
