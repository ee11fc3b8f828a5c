package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/costantinoai/evolution-mail-translate/internal/display"
	"github.com/costantinoai/evolution-mail-translate/internal/mail"
	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
	appsync "github.com/costantinoai/evolution-mail-translate/internal/sync"
)

const (
	// historyKeep is how many history records survive pruning.
	historyKeep = 500

	// storeTimeout bounds a single store write from the UI.
	storeTimeout = 10 * time.Second
)

// IsTranslateAvailable reports whether the translate action applies to
// view: it shows a message and has no translation running.
func (m *Model) IsTranslateAvailable(view display.View) bool {
	if view == nil || view.MessageID() == "" {
		return false
	}
	return !m.dispatcher.InFlight(view)
}

// TriggerTranslate translates the message shown in view. When view already
// shows a translation of the same message it toggles back to the original.
func (m *Model) TriggerTranslate(view display.View) {
	if !m.IsTranslateAvailable(view) {
		return
	}

	m.machine.ClearIfMessageChanged(view)
	if m.machine.IsTranslated(view) {
		m.TriggerShowOriginal(view)
		return
	}

	body := view.RawContent()
	if strings.TrimSpace(body) == "" {
		m.log.WithField("message_id", view.MessageID()).Info("No message body available to translate")
		m.statusMsg = "No message body available to translate"
		return
	}

	ctx, ok := m.dispatcher.Begin(context.Background(), view)
	if !ok {
		m.statusMsg = "A translation is already running"
		return
	}

	op, err := m.orchestrator.TranslateDocumentWithActivity(
		ctx, body, m.dispatcher, m.dispatcher.Callback(view, view.MessageID()),
	)
	switch {
	case err != nil:
		m.dispatcher.Finish(view)
		m.statusMsg = "Translation failed: " + err.Error()
	case op == nil:
		m.dispatcher.Finish(view)
		m.statusMsg = fmt.Sprintf("Translation provider %q is not available", m.providerID())
	default:
		m.statusMsg = ""
	}
}

// TriggerShowOriginal puts the original content back into view.
func (m *Model) TriggerShowOriginal(view display.View) {
	if view == nil {
		return
	}
	m.machine.ClearIfMessageChanged(view)
	m.machine.Restore(view)
	m.refreshTranslated()
}

// handleTranslationResult applies a finished translation to its view when
// the view still shows the message it was requested for.
func (m *Model) handleTranslationResult(msg appsync.TranslationResultMsg) tea.Cmd {
	m.dispatcher.Finish(msg.View)

	logger := m.log.WithFields(logrus.Fields{
		"message_id": msg.MessageID,
		"provider":   msg.ProviderID,
	})

	switch {
	case provider.IsKind(msg.Err, provider.Cancelled):
		logger.Debug("Translation cancelled")
		m.statusMsg = ""
		return nil
	case msg.Err != nil:
		logger.WithError(msg.Err).Warn("Translation failed")
		m.statusMsg = ""
		return m.recordHistory(msg)
	}

	if msg.View == nil || msg.View.MessageID() != msg.MessageID {
		logger.Debug("Discarding translation for a message no longer shown")
		m.statusMsg = "Translation finished for a message no longer shown"
		return m.recordHistory(msg)
	}

	m.machine.ClearIfMessageChanged(msg.View)
	m.machine.Apply(msg.View, msg.Text)
	m.refreshTranslated()
	m.statusMsg = ""
	return m.recordHistory(msg)
}

// refreshTranslated syncs the viewer badge and list marker with the
// display machine.
func (m *Model) refreshTranslated() {
	translated := m.machine.IsTranslated(m.viewer)
	m.viewer.SetTranslated(translated)

	if m.translatedID != "" {
		m.mailList.MarkTranslated(m.translatedID, false)
		m.translatedID = ""
	}
	if translated {
		m.translatedID = m.viewer.MessageID()
		m.mailList.MarkTranslated(m.translatedID, true)
	}
}

// historyRecordedMsg reports the outcome of a history write.
type historyRecordedMsg struct {
	err error
}

// recordHistory stores the outcome of a finished translation.
func (m *Model) recordHistory(msg appsync.TranslationResultMsg) tea.Cmd {
	if m.store == nil {
		return nil
	}

	rec := model.HistoryRecord{
		MessageID:      msg.MessageID,
		ProviderID:     msg.ProviderID,
		TargetLanguage: msg.Request.TargetLanguage,
		Status:         model.HistoryStatusSuccess,
		InputBytes:     len(msg.Request.Input),
		OutputBytes:    len(msg.Text),
	}
	if msg.Err != nil {
		rec.Status = model.HistoryStatusFailed
		rec.ErrorText = msg.Err.Error()
	}

	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := s.RecordTranslation(ctx, rec); err != nil {
			return historyRecordedMsg{err: err}
		}
		_, err := s.PruneHistory(ctx, historyKeep)
		return historyRecordedMsg{err: err}
	}
}

// messageLoadedMsg carries the body of an opened message.
type messageLoadedMsg struct {
	id   string
	body string
	err  error
}

// openMessage shows msg in the viewer. Opening the message already shown
// keeps its translation state.
func (m *Model) openMessage(msg model.Message) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewMessage

	if m.viewer.MessageID() == msg.ID && m.viewer.RawContent() != "" {
		return nil
	}

	m.dispatcher.Cancel(m.viewer)
	m.viewer.Open(msg)
	m.machine.ClearIfMessageChanged(m.viewer)
	m.refreshTranslated()

	return m.loadMessage(msg)
}

// loadMessage returns a command that reads the message body from the cache,
// fetching it from its account when it is not cached yet.
func (m *Model) loadMessage(msg model.Message) tea.Cmd {
	s := m.store
	src := m.sources[msg.AccountID]
	logger := m.log.WithField("message_id", msg.ID)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		raw := msg.Raw
		if len(raw) == 0 && s != nil {
			if cached, err := s.GetMessageByID(ctx, msg.ID); err == nil {
				raw = cached.Raw
			}
		}

		if len(raw) == 0 {
			if src == nil {
				return messageLoadedMsg{id: msg.ID, err: fmt.Errorf("account %q is not configured", msg.AccountID)}
			}
			fetched, err := src.Fetch(ctx, msg.ID)
			if err != nil {
				return messageLoadedMsg{id: msg.ID, err: err}
			}
			raw = fetched.Raw
			if s != nil {
				if err := s.UpsertMessages(ctx, []model.Message{fetched}); err != nil {
					logger.WithError(err).Warn("Caching message body failed")
				}
			}
		}

		body, err := mail.BodyHTML(raw)
		return messageLoadedMsg{id: msg.ID, body: body, err: err}
	}
}
