// Package maillist is the mailbox view: cached messages from every account,
// newest first, with search.
package maillist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/costantinoai/evolution-mail-translate/internal/keys"
	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/store"
	"github.com/costantinoai/evolution-mail-translate/internal/theme"
)

// MessagesLoadedMsg is sent when messages have been loaded from the store.
type MessagesLoadedMsg struct {
	Messages []model.Message
	Err      error
}

// SelectedMessageMsg is sent when the user opens a message.
type SelectedMessageMsg struct {
	Message model.Message
}

// Model is the mailbox list view component.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	filter      store.MessageFilter
	translated  map[string]bool
	searchMode  bool
	searchInput textinput.Model
	loadErr     error
	width       int
	height      int
}

// New creates a new mailbox list model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	translated := make(map[string]bool)
	l := list.New([]list.Item{}, ItemDelegate{translated: translated}, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search subject or sender..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		translated:  translated,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the cached messages.
func (m Model) Init() tea.Cmd {
	return m.LoadMessages()
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MessagesLoadedMsg:
		m.loadErr = msg.Err
		items := make([]list.Item, len(msg.Messages))
		for i, message := range msg.Messages {
			items[i] = MessageItem{Message: message}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadMessages()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadMessages()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(MessageItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedMessageMsg{Message: item.Message}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// SelectedMessage returns the highlighted message.
func (m Model) SelectedMessage() (model.Message, bool) {
	item, ok := m.list.SelectedItem().(MessageItem)
	if !ok {
		return model.Message{}, false
	}
	return item.Message, true
}

// MarkTranslated flags a message row as showing a translation.
func (m *Model) MarkTranslated(id string, translated bool) {
	if translated {
		m.translated[id] = true
	} else {
		delete(m.translated, id)
	}
}

// View renders the list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no messages are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.loadErr != nil:
		return style.Render("Could not load messages:\n" + m.loadErr.Error())
	case m.filter.Query != nil:
		return style.Render("No matching messages.\nPress / then enter to clear the search.")
	default:
		return style.Render(
			"No messages yet.\n\n" +
				"Add an account to ~/.config/mailtranslate/config.yaml and press r.",
		)
	}
}

// LoadMessages returns a tea.Cmd that queries the store with the current
// filter.
func (m Model) LoadMessages() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		msgs, err := s.GetMessages(context.Background(), filter)
		return MessagesLoadedMsg{Messages: msgs, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
