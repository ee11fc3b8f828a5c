package help

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/costantinoai/evolution-mail-translate/internal/keys"
	"github.com/costantinoai/evolution-mail-translate/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int

	// summary describes the active translation settings.
	summary string
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// SetTranslationSummary shows which provider and language translations use.
func (m *Model) SetTranslationSummary(providerName, targetLanguage string) {
	m.summary = fmt.Sprintf("Translating into %q with %s", targetLanguage, providerName)
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections := []string{titleStyle.Render("Keyboard Shortcuts")}

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	sections = append(sections, m.help.View(m.keys))

	if m.summary != "" {
		sections = append(sections, "", theme.HelpStyle.Render(m.summary))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
