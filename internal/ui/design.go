package ui

import "github.com/charmbracelet/lipgloss"

// Design centralizes the TUI color palette and common styles.
//
// Palette is based on Vitesse Dark Soft:
// https://github.com/antfu/vscode-theme-vitesse/blob/main/themes/vitesse-dark-soft.json
type designTheme struct {
	Primary lipgloss.Color
	Yellow  lipgloss.Color
	Cyan    lipgloss.Color
	Red     lipgloss.Color

	Text      lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color

	Border lipgloss.Color

	BarFG lipgloss.AdaptiveColor
	BarBG lipgloss.AdaptiveColor
}

// Vitesse defines the current global design theme for the TUI.
var Vitesse = designTheme{
	Primary: lipgloss.Color("#4d9375"),
	Yellow:  lipgloss.Color("#e6cc77"),
	Cyan:    lipgloss.Color("#5eaab5"),
	Red:     lipgloss.Color("#cb7676"),

	Text:      lipgloss.Color("#dbd7caee"),
	Secondary: lipgloss.Color("#bfbaaa"),
	Muted:     lipgloss.Color("#dedcd590"),

	Border: lipgloss.Color("#252525"),

	BarFG: lipgloss.AdaptiveColor{Light: "#343433", Dark: "#bfbaaa"},
	BarBG: lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#222"},
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Primary)
	okStyle    = lipgloss.NewStyle().Foreground(Vitesse.Primary)
	warnStyle  = lipgloss.NewStyle().Foreground(Vitesse.Yellow)
	errStyle   = lipgloss.NewStyle().Foreground(Vitesse.Red)
	mutedStyle = lipgloss.NewStyle().Foreground(Vitesse.Muted)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Vitesse.Border).
			Padding(0, 1)
	barStyle = lipgloss.NewStyle().
			Foreground(Vitesse.BarFG).
			Background(Vitesse.BarBG).
			Padding(0, 1)
)
