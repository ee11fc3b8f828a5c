// Package display tracks, per message view, whether the view shows a
// translation and what it showed before.
package display

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costantinoai/evolution-mail-translate/internal/logging"
)

// View is a surface that renders one message at a time. Implementations are
// used as map keys and must be comparable; pointer types are expected.
type View interface {
	// MessageID identifies the message currently shown. Empty means none.
	MessageID() string

	// RawContent returns the content currently rendered.
	RawContent() string

	// SetContent replaces the rendered content.
	SetContent(content string)

	// Reload re-renders the current message from its source.
	Reload()
}

// State is the record kept for a translated view.
type State struct {
	// Original is the content the view showed before the first translation.
	Original string

	// MessageID is the id of the message that was translated.
	MessageID string

	// AppliedAt is when the translation was last applied.
	AppliedAt time.Time
}

// Machine holds at most one State per view. A view is translated exactly
// when it has a State. Machine is not safe for concurrent use; all calls
// must come from the UI goroutine.
type Machine struct {
	states map[View]*State
	log    logrus.FieldLogger
	now    func() time.Time
}

// New creates an empty machine. A nil logger discards output.
func New(logger logrus.FieldLogger) *Machine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Machine{
		states: make(map[View]*State),
		log:    logger.WithField("component", "display"),
		now:    time.Now,
	}
}

// changed reports whether a state recorded for stored no longer matches the
// message now shown. An empty current id never matches.
func changed(stored, current string) bool {
	return current == "" || stored != current
}

// Apply shows translated in v. The first apply for a message captures the
// view's current content and message id; applying again to the same message
// keeps the earlier capture so Restore still returns the original.
func (m *Machine) Apply(v View, translated string) {
	if v == nil {
		return
	}

	current := v.MessageID()
	st, ok := m.states[v]
	if ok && changed(st.MessageID, current) {
		m.log.WithFields(logrus.Fields{
			"stored":  st.MessageID,
			"current": current,
		}).Debug("Evicting stale translation state before apply")
		delete(m.states, v)
		ok = false
	}

	if !ok {
		st = &State{
			Original:  v.RawContent(),
			MessageID: current,
		}
		m.states[v] = st
	}
	st.AppliedAt = m.now()

	v.SetContent(translated)
}

// Restore puts the captured original back into v, reloads it, and forgets
// the state. It reports whether anything was restored; without a state it
// does nothing.
func (m *Machine) Restore(v View) bool {
	if v == nil {
		return false
	}

	st, ok := m.states[v]
	if !ok {
		return false
	}

	delete(m.states, v)
	v.SetContent(st.Original)
	v.Reload()
	return true
}

// IsTranslated reports whether v has a state. It does not check the message
// id; call ClearIfMessageChanged first on every selection change.
func (m *Machine) IsTranslated(v View) bool {
	if v == nil {
		return false
	}
	_, ok := m.states[v]
	return ok
}

// ClearIfMessageChanged drops v's state when it belongs to a message other
// than the one v shows now. It reports whether a state was dropped.
func (m *Machine) ClearIfMessageChanged(v View) bool {
	if v == nil {
		return false
	}

	st, ok := m.states[v]
	if !ok || !changed(st.MessageID, v.MessageID()) {
		return false
	}

	m.log.WithField("stored", st.MessageID).Debug("Message changed, dropping translation state")
	delete(m.states, v)
	return true
}

// Evict forgets v's state without touching the view. Use it when a view is
// closed.
func (m *Machine) Evict(v View) {
	delete(m.states, v)
}

// Lookup returns a copy of v's state.
func (m *Machine) Lookup(v View) (State, bool) {
	st, ok := m.states[v]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Len returns the number of translated views.
func (m *Machine) Len() int {
	return len(m.states)
}
