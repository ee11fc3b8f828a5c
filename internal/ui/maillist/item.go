package maillist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/theme"
)

// MessageItem wraps a model.Message so it can be used in a bubbles/list.
type MessageItem struct {
	Message model.Message
}

// FilterValue returns the string used for fuzzy filtering.
func (i MessageItem) FilterValue() string { return i.Message.FilterValue() }

// Title returns the subject line.
func (i MessageItem) Title() string { return i.Message.Title() }

// Description returns the sender and date.
func (i MessageItem) Description() string { return i.Message.Description() }

// ItemDelegate implements list.ItemDelegate for rendering message rows.
type ItemDelegate struct {
	// translated holds the ids of messages with a translation on screen.
	// Shared by reference with the list Model so updates are visible.
	translated map[string]bool
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single message line: sender, subject, relative date.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	mi, ok := item.(MessageItem)
	if !ok {
		return
	}
	msg := mi.Message

	from := lipgloss.NewStyle().
		Width(20).
		MaxWidth(20).
		Foreground(theme.ColorBlue).
		Render(msg.From)

	marker := " "
	if d.translated[msg.ID] {
		marker = lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render("⇄")
	}

	when := ""
	if !msg.Date.IsZero() {
		when = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(humanize.Time(msg.Date))
	}

	line := fmt.Sprintf("%s %s %s  %s", marker, from, msg.Title(), when)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
