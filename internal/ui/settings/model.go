// Package settings is the translation settings form.
package settings

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
	"github.com/costantinoai/evolution-mail-translate/internal/theme"
)

// SavedMsg carries the settings the user confirmed.
type SavedMsg struct {
	Translate model.TranslateConfig
}

// ClosedMsg signals the form was dismissed without saving.
type ClosedMsg struct{}

// Language is a selectable target language.
type Language struct {
	Code string
	Name string
}

// Languages are the target languages offered in the form.
var Languages = []Language{
	{"en", "English"}, {"es", "Spanish"}, {"fr", "French"},
	{"de", "German"}, {"it", "Italian"}, {"pt", "Portuguese"},
	{"nl", "Dutch"}, {"sv", "Swedish"}, {"da", "Danish"},
	{"no", "Norwegian"}, {"fi", "Finnish"}, {"pl", "Polish"},
	{"ru", "Russian"}, {"uk", "Ukrainian"}, {"cs", "Czech"},
	{"sk", "Slovak"}, {"hu", "Hungarian"}, {"ro", "Romanian"},
	{"bg", "Bulgarian"}, {"el", "Greek"}, {"tr", "Turkish"},
	{"ar", "Arabic"}, {"he", "Hebrew"}, {"hi", "Hindi"},
	{"ja", "Japanese"}, {"ko", "Korean"}, {"zh", "Chinese"},
}

// Model is the Bubble Tea model for the settings form.
type Model struct {
	form      *huh.Form
	base      model.TranslateConfig
	providers []provider.Descriptor

	// Form field values (huh binds to these)
	language        string
	providerID      string
	installOnDemand bool

	width  int
	height int
}

// New creates the settings view. Start must be called before it is shown.
func New(providers []provider.Descriptor, width, height int) Model {
	return Model{
		providers: providers,
		width:     width,
		height:    height,
	}
}

// Start builds a fresh form pre-filled from current.
func (m *Model) Start(current model.TranslateConfig) tea.Cmd {
	m.base = current
	m.language = current.TargetLanguage
	m.providerID = current.ProviderID
	m.installOnDemand = current.InstallOnDemand
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target language").
				Description("Messages are translated into this language").
				Options(languageOptions()...).
				Value(&m.language),
			huh.NewSelect[string]().
				Title("Provider").
				Description("Translation backend").
				Options(providerOptions(m.providers)...).
				Value(&m.providerID),
			huh.NewConfirm().
				Title("Install models on demand").
				Description("Let the offline provider download missing language models").
				Value(&m.installOnDemand),
		),
	).WithWidth(m.formWidth())
}

func languageOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(Languages))
	for _, l := range Languages {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", l.Name, l.Code), l.Code))
	}
	return opts
}

func providerOptions(descs []provider.Descriptor) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(descs))
	for _, d := range descs {
		opts = append(opts, huh.NewOption(d.DisplayName, d.ID))
	}
	return opts
}

// result merges the form values into the settings the form started from.
func (m Model) result() model.TranslateConfig {
	cfg := m.base
	cfg.TargetLanguage = m.language
	cfg.ProviderID = m.providerID
	cfg.InstallOnDemand = m.installOnDemand
	return cfg
}

// Update forwards input to the form and reports completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg := m.result()
		m.form = nil
		return m, func() tea.Msg { return SavedMsg{Translate: cfg} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return ClosedMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Translation Settings")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View()))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}
