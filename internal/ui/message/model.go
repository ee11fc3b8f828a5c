// Package message renders a single mail message and is the view the
// translation display machine operates on.
package message

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/costantinoai/evolution-mail-translate/internal/keys"
	"github.com/costantinoai/evolution-mail-translate/internal/mail"
	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Viewer shows one message. It is used by pointer so it can serve as a
// display.View key.
type Viewer struct {
	msg        model.Message
	body       string
	content    string
	translated bool
	loading    bool
	err        error

	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates an empty viewer.
func New(k *keys.KeyMap, width, height int) *Viewer {
	vp := viewport.New(width, height-headerLines)
	vp.Style = lipgloss.NewStyle()

	return &Viewer{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// headerLines is the space taken by the header block above the body.
const headerLines = 6

// MessageID returns the id of the message shown, or "" when none is.
func (v *Viewer) MessageID() string { return v.msg.ID }

// RawContent returns the HTML currently rendered.
func (v *Viewer) RawContent() string { return v.content }

// SetContent replaces the rendered HTML.
func (v *Viewer) SetContent(content string) {
	v.content = content
	v.render()
}

// Reload re-renders the message body as fetched from its source.
func (v *Viewer) Reload() {
	v.content = v.body
	v.render()
}

// Message returns the summary of the message shown.
func (v *Viewer) Message() model.Message { return v.msg }

// Body returns the HTML body as fetched, independent of any translation.
func (v *Viewer) Body() string { return v.body }

// Open switches to msg and shows a loading state until Show is called.
func (v *Viewer) Open(msg model.Message) {
	v.msg = msg
	v.body = ""
	v.content = ""
	v.err = nil
	v.loading = true
	v.viewport.SetContent("")
	v.viewport.GotoTop()
}

// Show sets the fetched body for the open message.
func (v *Viewer) Show(body string) {
	v.loading = false
	v.err = nil
	v.body = body
	v.content = body
	v.render()
	v.viewport.GotoTop()
}

// SetError shows err in place of the body.
func (v *Viewer) SetError(err error) {
	v.loading = false
	v.err = err
}

// SetTranslated toggles the translated badge in the header.
func (v *Viewer) SetTranslated(translated bool) {
	v.translated = translated
}

// Loading reports whether the body is still being fetched.
func (v *Viewer) Loading() bool { return v.loading }

func (v *Viewer) render() {
	v.viewport.SetContent(wrap(mail.StripHTML(v.content), v.viewport.Width))
}

// Update handles scrolling and the back key.
func (v *Viewer) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, v.keys.Back) {
		return func() tea.Msg { return BackMsg{} }
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

// View renders the header block and the scrollable body.
func (v *Viewer) View() string {
	centered := lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if v.msg.ID == "" {
		return centered.Render("No message selected")
	}

	var body string
	switch {
	case v.err != nil:
		body = theme.ErrorStyle.Render(v.err.Error())
	case v.loading:
		body = lipgloss.NewStyle().Foreground(theme.ColorGray).Render("Loading message...")
	default:
		body = v.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, v.renderHeader(), body)
}

func (v *Viewer) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	title := titleStyle.Render(v.msg.Title())
	if v.translated {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", theme.TranslatedBadgeStyle.Render("TRANSLATED"))
	}

	date := ""
	if !v.msg.Date.IsZero() {
		date = fmt.Sprintf("%s (%s)", v.msg.Date.Format("2006-01-02 15:04"), humanize.Time(v.msg.Date))
	}

	lines := []string{
		title,
		theme.LabelStyle.Render("From:") + " " + valStyle.Render(v.msg.From),
		theme.LabelStyle.Render("To:  ") + " " + valStyle.Render(v.msg.To),
		theme.LabelStyle.Render("Date:") + " " + valStyle.Render(date),
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	lines = append(lines, sepStyle.Render(strings.Repeat("─", max(0, min(v.width-4, 80)))), "")

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SetSize updates the viewer dimensions.
func (v *Viewer) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(1, height-headerLines)
	v.render()
}

// wrap soft-wraps s to width using lipgloss.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
