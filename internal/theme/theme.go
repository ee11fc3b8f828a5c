package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/costantinoai/evolution-mail-translate/internal/translate"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the message view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// LabelStyle renders header field names in the message view.
var LabelStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGray)

// TranslatedBadgeStyle marks a message view that shows a translation.
var TranslatedBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorMagenta).
	Padding(0, 1)

// ErrorStyle renders error text.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// ActivityStyle returns a color-coded style for a translation activity state.
func ActivityStyle(state translate.ActivityState) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch state {
	case translate.ActivityRunning:
		return base.Foreground(ColorYellow)
	case translate.ActivityCompleted:
		return base.Foreground(ColorGreen)
	case translate.ActivityCancelled:
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorGray)
	}
}

// HistoryStatusStyle returns a color-coded style for a history record status.
func HistoryStatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case "success":
		return base.Foreground(ColorGreen)
	case "failed":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}
