package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/costantinoai/evolution-mail-translate/internal/theme"
)

// Layout manages the terminal layout dimensions: a header line, the content
// area and a status line.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return max(0, l.Height-l.HeaderHeight-l.StatusBarHeight)
}

// RenderHeader renders the top bar with a title on the left and the
// translation status on the right.
func (l Layout) RenderHeader(title string, status string) string {
	return l.bar(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders the bottom bar with the activity line on the left
// and key hints on the right.
func (l Layout) RenderStatusBar(activity string, hints string) string {
	return l.bar(theme.StatusBarStyle, activity, hints)
}

// bar fills the full width with style, left and right aligned text.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Align(lipgloss.Right).Render(right)
	}

	gap := max(0, l.Width-lipgloss.Width(leftRendered)-lipgloss.Width(rightRendered))

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(header string, content string, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
