package sync

import (
	"context"
	gosync "sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/costantinoai/evolution-mail-translate/internal/display"
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
	"github.com/costantinoai/evolution-mail-translate/internal/translate"
)

// TranslationResultMsg is a tea.Msg sent when a translation for a view
// finishes.
type TranslationResultMsg struct {
	View display.View

	// MessageID is the message the view showed when the request started.
	MessageID string

	ProviderID string
	Request    provider.Request
	Text       string
	Err        error
}

// ActivityMsg is a tea.Msg carrying a progress update.
type ActivityMsg struct {
	Activity translate.Activity
}

// resultBuffer sizes the result channel; senders block when it is full.
const resultBuffer = 16

// Dispatcher moves translation results from provider goroutines onto the
// Bubble Tea update loop and allows one in-flight translation per view.
type Dispatcher struct {
	mu       gosync.Mutex
	inFlight map[display.View]context.CancelFunc
	resultCh chan tea.Msg
	stopCh   chan struct{}
	stopped  bool
}

// New creates a Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		inFlight: make(map[display.View]context.CancelFunc),
		resultCh: make(chan tea.Msg, resultBuffer),
		stopCh:   make(chan struct{}),
	}
}

// Begin marks view as busy and returns a context for its translation. It
// returns false when view already has a translation in flight.
func (d *Dispatcher) Begin(parent context.Context, view display.View) (context.Context, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.inFlight[view]; busy || d.stopped {
		return nil, false
	}

	ctx, cancel := context.WithCancel(parent)
	d.inFlight[view] = cancel
	return ctx, true
}

// Finish releases view after its result was handled or its request failed
// to start.
func (d *Dispatcher) Finish(view display.View) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cancel, ok := d.inFlight[view]; ok {
		cancel()
		delete(d.inFlight, view)
	}
}

// Cancel aborts the in-flight translation for view, if any. The view stays
// busy until its (cancelled) result arrives and Finish is called.
func (d *Dispatcher) Cancel(view display.View) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	cancel, ok := d.inFlight[view]
	if ok {
		cancel()
	}
	return ok
}

// InFlight reports whether view has a translation running.
func (d *Dispatcher) InFlight(view display.View) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.inFlight[view]
	return ok
}

// Callback returns a provider callback that forwards the outcome for view
// to the update loop.
func (d *Dispatcher) Callback(view display.View, messageID string) provider.Callback {
	return func(p provider.Provider, op *provider.Operation) {
		text, err := p.TranslateFinish(op)
		d.sendResult(TranslationResultMsg{
			View:       view,
			MessageID:  messageID,
			ProviderID: p.ID(),
			Request:    op.Request,
			Text:       text,
			Err:        err,
		})
	}
}

// Report implements translate.Reporter. Updates are dropped when the
// channel is full.
func (d *Dispatcher) Report(a translate.Activity) {
	select {
	case d.resultCh <- ActivityMsg{Activity: a}:
	default:
	}
}

// Stop cancels every in-flight translation and unblocks pending senders.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	for view, cancel := range d.inFlight {
		cancel()
		delete(d.inFlight, view)
	}
	close(d.stopCh)
}

// sendResult blocks until the update loop has room for msg, so results are
// never dropped, unless the dispatcher is stopped.
func (d *Dispatcher) sendResult(msg tea.Msg) {
	select {
	case d.resultCh <- msg:
	case <-d.stopCh:
	}
}

// waitForResult returns a tea.Cmd that waits for the next message on the
// result channel.
func (d *Dispatcher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-d.resultCh:
			return msg
		case <-d.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next result or
// activity update. Call it again after handling each one.
func (d *Dispatcher) WaitForNextResult() tea.Cmd {
	return d.waitForResult()
}
