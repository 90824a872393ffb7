package ui

import (
	"toolctl/internal/tools"
)

// Bubble Tea messages

// statusMsg carries a full status refresh (detection pass finished).
type statusMsg struct {
	statuses []tools.ToolStatus
	err      error
}

// updateCheckMsg carries the update-check result for one tool.
type updateCheckMsg struct {
	toolID string
	result tools.UpdateResult
	err    error
}

// instancesMsg carries the grouped instance view for the instances pane.
type instancesMsg struct {
	grouped map[string][]tools.ToolInstance
	err     error
}

type noticeMsg string
