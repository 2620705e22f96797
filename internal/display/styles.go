package display

import "github.com/charmbracelet/lipgloss"

// Zinc greys with a few pastel accents. Foreground only, except the bar.
var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#27272a")).
			Foreground(lipgloss.Color("#a1a1aa"))
	barPageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fde68a"))
	barFilterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a")).Italic(true)
	barSepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	echoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa"))

	// BannerStyle paints the startup art.
	BannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))

	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#bae6fd"))
	headingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#bbf7d0")).Bold(true)
	primaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4d4d8"))
	secondaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5"))
)
