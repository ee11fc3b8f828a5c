package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/costantinoai/evolution-mail-translate/internal/display"
	"github.com/costantinoai/evolution-mail-translate/internal/keys"
	"github.com/costantinoai/evolution-mail-translate/internal/logging"
	"github.com/costantinoai/evolution-mail-translate/internal/mail"
	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
	"github.com/costantinoai/evolution-mail-translate/internal/store"
	appsync "github.com/costantinoai/evolution-mail-translate/internal/sync"
	"github.com/costantinoai/evolution-mail-translate/internal/theme"
	"github.com/costantinoai/evolution-mail-translate/internal/translate"
	"github.com/costantinoai/evolution-mail-translate/internal/ui"
	helpview "github.com/costantinoai/evolution-mail-translate/internal/ui/help"
	"github.com/costantinoai/evolution-mail-translate/internal/ui/history"
	"github.com/costantinoai/evolution-mail-translate/internal/ui/maillist"
	"github.com/costantinoai/evolution-mail-translate/internal/ui/message"
	"github.com/costantinoai/evolution-mail-translate/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewMessage
	ViewHelp
	ViewSettings
	ViewHistory
)

// Deps are the collaborators the root model is built from.
type Deps struct {
	Config     *model.AppConfig
	ConfigPath string
	Store      store.Store
	Registry   *provider.Registry
	Sources    []mail.Source
	Logger     logrus.FieldLogger
}

// Model is the root Bubble Tea model that manages view routing, the
// message viewer and translation of the message it shows.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	cfg     *model.AppConfig
	cfgPath string
	store   store.Store
	sources map[string]mail.Source
	keys    *keys.KeyMap
	log     logrus.FieldLogger

	registry     *provider.Registry
	orchestrator *translate.Orchestrator
	machine      *display.Machine
	dispatcher   *appsync.Dispatcher

	mailList     maillist.Model
	viewer       *message.Viewer
	helpView     helpview.Model
	settingsView settings.Model
	historyView  history.Model
	spinner      spinner.Model

	// activity is the latest translation progress update.
	activity *translate.Activity

	// translatedID is the message marked as translated in the list.
	translatedID string

	statusMsg string
}

// New creates the root application model.
func New(d Deps) Model {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	cfg := d.Config
	if cfg == nil {
		cfg = &model.AppConfig{}
	}
	reg := d.Registry
	if reg == nil {
		reg = NewRegistry(cfg, logger)
	}

	sources := make(map[string]mail.Source, len(d.Sources))
	for _, src := range d.Sources {
		sources[src.AccountID()] = src
	}

	k := keys.DefaultKeyMap()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorYellow)

	m := Model{
		currentView:  ViewList,
		cfg:          cfg,
		cfgPath:      d.ConfigPath,
		store:        d.Store,
		sources:      sources,
		keys:         k,
		log:          logger.WithField("component", "app"),
		registry:     reg,
		orchestrator: translate.NewOrchestrator(reg, model.NewSettings(cfg), logger),
		machine:      display.New(logger),
		dispatcher:   appsync.New(),
		mailList:     maillist.New(d.Store, k, 80, 24),
		viewer:       message.New(k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		settingsView: settings.New(reg.Descriptors(), 80, 24),
		historyView:  history.New(d.Store, k, 80, 24),
		spinner:      sp,
	}
	m.updateHelpSummary()
	return m
}

// Init loads cached messages, syncs accounts and starts listening for
// translation results.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.mailList.Init(),
		m.syncMail(),
		m.dispatcher.WaitForNextResult(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.mailList.SetSize(w, h)
		m.viewer.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.historyView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case mailSyncedMsg:
		m.statusMsg = msg.status()
		return m, m.mailList.LoadMessages()

	case maillist.MessagesLoadedMsg:
		var cmd tea.Cmd
		m.mailList, cmd = m.mailList.Update(msg)
		return m, cmd

	case maillist.SelectedMessageMsg:
		cmd := m.openMessage(msg.Message)
		return m, cmd

	case messageLoadedMsg:
		if m.viewer.MessageID() != msg.id {
			return m, nil
		}
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("message_id", msg.id).Warn("Loading message failed")
			m.viewer.SetError(msg.err)
			return m, nil
		}
		m.viewer.Show(msg.body)
		return m, nil

	case message.BackMsg:
		m.currentView = ViewList
		return m, nil

	case appsync.ActivityMsg:
		a := msg.Activity
		m.activity = &a
		cmds := []tea.Cmd{m.dispatcher.WaitForNextResult()}
		if a.State == translate.ActivityRunning {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case appsync.TranslationResultMsg:
		cmd := m.handleTranslationResult(msg)
		return m, tea.Batch(cmd, m.dispatcher.WaitForNextResult())

	case historyRecordedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("Recording translation history failed")
		}
		return m, nil

	case spinner.TickMsg:
		if m.activity == nil || m.activity.State != translate.ActivityRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case settings.SavedMsg:
		m.cfg.Translate = msg.Translate
		m.currentView = m.previousView
		m.updateHelpSummary()
		return m, m.saveConfig()

	case settings.ClosedMsg:
		m.currentView = m.previousView
		return m, nil

	case configSavedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Error("Saving settings failed")
			m.statusMsg = "Could not save settings: " + msg.err.Error()
		} else {
			m.statusMsg = "Settings saved"
		}
		return m, nil

	case history.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case history.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that are not owned by the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.dispatcher.Stop()
		return m, tea.Quit, true
	}

	// Forms and the search input own every other key.
	if m.currentView == ViewSettings || (m.currentView == ViewList && m.mailList.Searching()) {
		return m, nil, false
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewList {
			m.dispatcher.Stop()
			return m, tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case "r":
		if m.currentView == ViewList {
			m.statusMsg = "Syncing mail..."
			return m, m.syncMail(), true
		}

	case "t":
		if m.currentView == ViewMessage {
			m.TriggerTranslate(m.viewer)
			return m, nil, true
		}

	case "o":
		if m.currentView == ViewMessage {
			m.TriggerShowOriginal(m.viewer)
			return m, nil, true
		}

	case "x":
		if m.dispatcher.Cancel(m.viewer) {
			m.statusMsg = "Cancelling translation..."
			return m, nil, true
		}

	case "s":
		if m.currentView == ViewList || m.currentView == ViewMessage {
			m.previousView = m.currentView
			m.currentView = ViewSettings
			cmd := m.settingsView.Start(m.cfg.Translate)
			return m, cmd, true
		}

	case "h":
		if m.currentView == ViewList {
			m.previousView = m.currentView
			m.currentView = ViewHistory
			return m, m.historyView.Init(), true
		}
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.mailList, cmd = m.mailList.Update(msg)
	case ViewMessage:
		cmd = m.viewer.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Mail Translate", m.translateStatus())
	statusBar := m.layout.RenderStatusBar(m.activityLine(), m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.mailList.View()
	case ViewMessage:
		return m.viewer.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHistory:
		return m.historyView.View()
	default:
		return ""
	}
}

// translateStatus returns the provider and target language for the header.
func (m Model) translateStatus() string {
	return fmt.Sprintf("%s → %s", m.providerID(), m.targetLanguage())
}

// activityLine returns the left side of the status bar: a running
// translation first, then the latest status message, then the last
// finished activity.
func (m Model) activityLine() string {
	if m.activity != nil && m.activity.State == translate.ActivityRunning {
		return m.spinner.View() + " " + theme.ActivityStyle(m.activity.State).Render(m.activity.Text)
	}
	if m.statusMsg != "" {
		return m.statusMsg
	}
	if m.activity != nil {
		return theme.ActivityStyle(m.activity.State).Render(m.activity.Text)
	}
	return ""
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help"
	case ViewMessage:
		if m.machine.IsTranslated(m.viewer) {
			return "o original | t toggle | esc back"
		}
		return "t translate | s settings | esc back"
	case ViewSettings:
		return "enter confirm | esc cancel"
	case ViewHistory:
		return "j/k scroll | esc back"
	default:
		return "q quit | ? help | / search | r refresh | s settings | h history"
	}
}

func (m Model) providerID() string {
	if id := m.cfg.Translate.ProviderID; id != "" {
		return id
	}
	return translate.DefaultProviderID
}

func (m Model) targetLanguage() string {
	if lang := m.cfg.Translate.TargetLanguage; lang != "" {
		return lang
	}
	return translate.DefaultTargetLanguage
}

func (m *Model) updateHelpSummary() {
	m.helpView.SetTranslationSummary(providerName(m.registry, m.providerID()), m.targetLanguage())
}

// configSavedMsg reports the outcome of persisting settings.
type configSavedMsg struct {
	err error
}

// saveConfig writes a snapshot of the configuration to disk.
func (m Model) saveConfig() tea.Cmd {
	if m.cfgPath == "" {
		return nil
	}
	path := m.cfgPath
	snapshot := *m.cfg
	return func() tea.Msg {
		return configSavedMsg{err: model.SaveConfig(path, &snapshot)}
	}
}

// Dispatcher exposes the result dispatcher so callers can stop it on exit.
func (m Model) Dispatcher() *appsync.Dispatcher {
	return m.dispatcher
}
