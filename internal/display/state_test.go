package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeView is an in-memory View.
type fakeView struct {
	id      string
	content string
	reloads int
}

func (v *fakeView) MessageID() string   { return v.id }
func (v *fakeView) RawContent() string  { return v.content }
func (v *fakeView) SetContent(c string) { v.content = c }
func (v *fakeView) Reload()             { v.reloads++ }

func TestApplyRestore_RoundTrip(t *testing.T) {
	m := New(nil)
	view := &fakeView{id: "msg-1", content: "<p>Hello</p>"}

	m.Apply(view, "<p>Hola</p>")
	assert.True(t, m.IsTranslated(view))
	assert.Equal(t, "<p>Hola</p>", view.content)

	assert.True(t, m.Restore(view))
	assert.False(t, m.IsTranslated(view))
	assert.Equal(t, "<p>Hello</p>", view.content)
	assert.Equal(t, 1, view.reloads)
}

func TestRestore_Idempotent(t *testing.T) {
	m := New(nil)
	view := &fakeView{id: "msg-1", content: "original"}

	m.Apply(view, "translated")
	require.True(t, m.Restore(view))

	assert.False(t, m.Restore(view))
	assert.Equal(t, "original", view.content)
	assert.Equal(t, 1, view.reloads)
}

func TestRestore_WithoutState(t *testing.T) {
	m := New(nil)
	view := &fakeView{id: "msg-1", content: "original"}

	assert.False(t, m.Restore(view))
	assert.Equal(t, "original", view.content)
	assert.Zero(t, view.reloads)
}

func TestApply_TwiceKeepsFirstOriginal(t *testing.T) {
	m := New(nil)
	view := &fakeView{id: "msg-1", content: "Hello"}

	m.Apply(view, "Hola")
	m.Apply(view, "Bonjour")
	assert.Equal(t, "Bonjour", view.content)
	assert.Equal(t, 1, m.Len())

	m.Restore(view)
	assert.Equal(t, "Hello", view.content)
}

func TestApply_StaleStateRecaptured(t *testing.T) {
	m := New(nil)
	view := &fakeView{id: "msg-1", content: "first"}

	m.Apply(view, "primero")

	view.id = "msg-2"
	view.content = "second"
	m.Apply(view, "segundo")

	st, ok := m.Lookup(view)
	require.True(t, ok)
	assert.Equal(t, "msg-2", st.MessageID)
	assert.Equal(t, "second", st.Original)
	assert.Equal(t, 1, m.Len())

	m.Restore(view)
	assert.Equal(t, "second", view.content)
}

func TestClearIfMessageChanged(t *testing.T) {
	tests := []struct {
		name      string
		storedID  string
		currentID string
		evicted   bool
	}{
		{name: "same message", storedID: "msg-1", currentID: "msg-1", evicted: false},
		{name: "different message", storedID: "msg-1", currentID: "msg-2", evicted: true},
		{name: "no current message", storedID: "msg-1", currentID: "", evicted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil)
			view := &fakeView{id: tt.storedID, content: "orig"}
			m.Apply(view, "trans")

			view.id = tt.currentID
			assert.Equal(t, tt.evicted, m.ClearIfMessageChanged(view))
			assert.Equal(t, !tt.evicted, m.IsTranslated(view))
			assert.Equal(t, "trans", view.content)
		})
	}
}

func TestClearIfMessageChanged_NoState(t *testing.T) {
	m := New(nil)
	view := &fakeView{id: "msg-1"}

	assert.False(t, m.ClearIfMessageChanged(view))
	assert.False(t, m.IsTranslated(view))
}

func TestIsTranslated_DoesNotRevalidate(t *testing.T) {
	m := New(nil)
	view := &fakeView{id: "msg-1", content: "orig"}
	m.Apply(view, "trans")

	view.id = "msg-2"
	assert.True(t, m.IsTranslated(view))

	m.ClearIfMessageChanged(view)
	assert.False(t, m.IsTranslated(view))
}

func TestStatesAreKeyedPerView(t *testing.T) {
	m := New(nil)
	a := &fakeView{id: "msg-1", content: "a"}
	b := &fakeView{id: "msg-1", content: "b"}

	m.Apply(a, "A")
	assert.True(t, m.IsTranslated(a))
	assert.False(t, m.IsTranslated(b))

	m.Apply(b, "B")
	assert.Equal(t, 2, m.Len())

	m.Restore(a)
	assert.Equal(t, "a", a.content)
	assert.Equal(t, "B", b.content)
	assert.True(t, m.IsTranslated(b))
}

func TestEvict(t *testing.T) {
	m := New(nil)
	view := &fakeView{id: "msg-1", content: "orig"}
	m.Apply(view, "trans")

	m.Evict(view)
	assert.False(t, m.IsTranslated(view))
	assert.Equal(t, "trans", view.content)
	assert.Zero(t, view.reloads)

	m.Evict(view)
	assert.Zero(t, m.Len())
}

func TestApply_RecordsTime(t *testing.T) {
	m := New(nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	view := &fakeView{id: "msg-1", content: "orig"}
	m.Apply(view, "trans")

	st, ok := m.Lookup(view)
	require.True(t, ok)
	assert.Equal(t, fixed, st.AppliedAt)
}

func TestNilView(t *testing.T) {
	m := New(nil)

	m.Apply(nil, "x")
	assert.False(t, m.IsTranslated(nil))
	assert.False(t, m.Restore(nil))
	assert.False(t, m.ClearIfMessageChanged(nil))
	m.Evict(nil)
	assert.Zero(t, m.Len())
}
