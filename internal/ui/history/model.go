// Package history lists recent translation attempts.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/costantinoai/evolution-mail-translate/internal/keys"
	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/store"
	"github.com/costantinoai/evolution-mail-translate/internal/theme"
)

// pageSize is how many records the view loads.
const pageSize = 100

// CloseMsg signals the parent to close the history view.
type CloseMsg struct{}

// LoadedMsg carries history records loaded from the store.
type LoadedMsg struct {
	Records []model.HistoryRecord
	Err     error
}

// Model is the history view component.
type Model struct {
	store    store.Store
	keys     *keys.KeyMap
	records  []model.HistoryRecord
	err      error
	viewport viewport.Model
	width    int
	height   int
}

// New creates a history view.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:    s,
		keys:     k,
		viewport: viewport.New(width, height-2),
		width:    width,
		height:   height,
	}
}

// Init loads the newest records.
func (m Model) Init() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		recs, err := s.GetHistory(context.Background(), store.HistoryFilter{Limit: pageSize})
		return LoadedMsg{Records: recs, Err: err}
	}
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.records = msg.Records
		m.err = msg.Err
		m.viewport.SetContent(m.renderRecords())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.History) {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the history view.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("Translation History (%d)", len(m.records)))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", m.viewport.View())
}

func (m Model) renderRecords() string {
	if m.err != nil {
		return theme.ErrorStyle.Render(m.err.Error())
	}
	if len(m.records) == 0 {
		return lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("No translations yet")
	}

	lines := make([]string, 0, len(m.records))
	for _, rec := range m.records {
		status := theme.HistoryStatusStyle(rec.Status).Render(rec.Status)
		line := status + " " + FormatRecord(rec)
		if rec.ErrorText != "" {
			line += "\n    " + theme.ErrorStyle.Render(firstLine(rec.ErrorText))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatRecord renders a record as one line without its status.
func FormatRecord(rec model.HistoryRecord) string {
	return fmt.Sprintf("%-10s → %-3s %8s → %-8s %-14s %s",
		rec.ProviderID,
		rec.TargetLanguage,
		humanize.Bytes(uint64(rec.InputBytes)),
		humanize.Bytes(uint64(rec.OutputBytes)),
		humanize.Time(rec.CreatedAt),
		rec.MessageID,
	)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-2)
}
