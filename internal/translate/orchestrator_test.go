package translate

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costantinoai/evolution-mail-translate/internal/provider"
	"github.com/costantinoai/evolution-mail-translate/internal/provider/subprocess"
	"github.com/costantinoai/evolution-mail-translate/tests/testutil"
)

type fakeSettings struct {
	target   string
	provider string
	timeout  time.Duration
}

func (s fakeSettings) TargetLanguage() string { return s.target }
func (s fakeSettings) ProviderID() string     { return s.provider }
func (s fakeSettings) Timeout() time.Duration { return s.timeout }

// recordingProviders records lookups and delegates to a registry.
type recordingProviders struct {
	reg    *provider.Registry
	lookup []string
}

func (r *recordingProviders) Lookup(id string) (provider.Provider, error) {
	r.lookup = append(r.lookup, id)
	return r.reg.Lookup(id)
}

// helperRegistry registers argos and google backed by the same shell helper.
func helperRegistry(t *testing.T, body string) (*provider.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	helper := testutil.WriteHelperScript(t, dir, "helper.sh", body)

	opts := func() subprocess.Options {
		return subprocess.Options{Locator: &subprocess.Locator{
			HelperOverride:      helper,
			InterpreterOverride: testutil.ShellInterpreter,
		}}
	}

	reg := provider.NewRegistry(nil)
	reg.Register(subprocess.Constructor(subprocess.Argos, opts))
	reg.Register(subprocess.Constructor(subprocess.Google, opts))
	return reg, dir
}

type outcome struct {
	providerID string
	text       string
	err        error
}

func collect() (provider.Callback, <-chan outcome) {
	ch := make(chan outcome, 1)
	return func(p provider.Provider, op *provider.Operation) {
		text, err := p.TranslateFinish(op)
		ch <- outcome{providerID: p.ID(), text: text, err: err}
	}, ch
}

func await(t *testing.T, ch <-chan outcome) outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(10 * time.Second):
		t.Fatal("callback never fired")
		return outcome{}
	}
}

func TestTranslateDocument_Success(t *testing.T) {
	reg, _ := helperRegistry(t, testutil.JSONHelper("<p>Hola</p>"))
	o := NewOrchestrator(reg, fakeSettings{target: "es", provider: "argos"}, nil)

	cb, ch := collect()
	op, err := o.TranslateDocument(context.Background(), "<p>Hello</p>", cb)
	require.NoError(t, err)
	require.NotNil(t, op)

	got := await(t, ch)
	require.NoError(t, got.err)
	assert.Equal(t, "<p>Hola</p>", got.text)
	assert.Equal(t, "argos", got.providerID)

	assert.True(t, op.Request.IsHTML)
	assert.Equal(t, "es", op.Request.TargetLanguage)
	assert.Empty(t, op.Request.SourceLanguage)
}

func TestTranslateDocument_HelperFailure(t *testing.T) {
	reg, _ := helperRegistry(t, testutil.FailingHelper("model missing", 1))
	o := NewOrchestrator(reg, fakeSettings{target: "es", provider: "argos"}, nil)

	cb, ch := collect()
	_, err := o.TranslateDocument(context.Background(), "<p>Hello</p>", cb)
	require.NoError(t, err)

	got := await(t, ch)
	assert.True(t, provider.IsKind(got.err, provider.HelperExecutionFailed))
	assert.Contains(t, got.err.Error(), "model missing")
}

func TestTranslateDocument_EmptyDocument(t *testing.T) {
	reg, dir := helperRegistry(t, `touch "$(dirname "$0")/spawned"`+"\n"+testutil.JSONHelper("x"))
	providers := &recordingProviders{reg: reg}
	o := NewOrchestrator(providers, fakeSettings{target: "es", provider: "argos"}, nil)

	called := false
	op, err := o.TranslateDocument(context.Background(), "", func(provider.Provider, *provider.Operation) {
		called = true
	})

	assert.Nil(t, op)
	assert.True(t, provider.IsKind(err, provider.InvalidArgument))
	assert.Empty(t, providers.lookup)
	assert.NoFileExists(t, filepath.Join(dir, "spawned"))

	time.Sleep(50 * time.Millisecond)
	assert.False(t, called)
}

func TestTranslateDocument_Defaults(t *testing.T) {
	reg, _ := helperRegistry(t, testutil.JSONHelper("ok"))
	providers := &recordingProviders{reg: reg}

	for _, settings := range []Settings{nil, fakeSettings{}} {
		o := NewOrchestrator(providers, settings, nil)

		cb, ch := collect()
		op, err := o.TranslateDocument(context.Background(), "<p>x</p>", cb)
		require.NoError(t, err)
		require.NotNil(t, op)

		got := await(t, ch)
		require.NoError(t, got.err)
		assert.Equal(t, DefaultProviderID, got.providerID)
		assert.Equal(t, DefaultTargetLanguage, op.Request.TargetLanguage)
	}
	assert.Equal(t, []string{"google", "google"}, providers.lookup)
}

func TestTranslateDocument_ProviderNotFound(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	reg := provider.NewRegistry(nil)
	o := NewOrchestrator(reg, fakeSettings{target: "es", provider: "deepl"}, logger)

	called := false
	op, err := o.TranslateDocument(context.Background(), "<p>Hello</p>", func(provider.Provider, *provider.Operation) {
		called = true
	})

	assert.Nil(t, op)
	assert.NoError(t, err)
	assert.False(t, called)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "deepl", hook.LastEntry().Data["provider"])
}

func TestTranslateDocument_Timeout(t *testing.T) {
	reg, _ := helperRegistry(t, "exec sleep 30")
	o := NewOrchestrator(reg, fakeSettings{target: "es", provider: "argos", timeout: 200 * time.Millisecond}, nil)

	cb, ch := collect()
	_, err := o.TranslateDocument(context.Background(), "<p>Hello</p>", cb)
	require.NoError(t, err)

	got := await(t, ch)
	assert.True(t, provider.IsKind(got.err, provider.Cancelled))
}

type recordingReporter struct {
	mu      sync.Mutex
	updates []Activity
}

func (r *recordingReporter) Report(a Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, a)
}

func (r *recordingReporter) snapshot() []Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Activity(nil), r.updates...)
}

func TestTranslateDocumentWithActivity_Completed(t *testing.T) {
	reg, _ := helperRegistry(t, testutil.JSONHelper("<p>Hola</p>"))
	o := NewOrchestrator(reg, fakeSettings{target: "es", provider: "argos"}, nil)
	reporter := &recordingReporter{}

	var seenAtCallback int
	done := make(chan string, 1)
	_, err := o.TranslateDocumentWithActivity(context.Background(), "<p>Hello</p>", reporter,
		func(p provider.Provider, op *provider.Operation) {
			seenAtCallback = len(reporter.snapshot())
			text, _ := p.TranslateFinish(op)
			done <- text
		})
	require.NoError(t, err)

	select {
	case text := <-done:
		assert.Equal(t, "<p>Hola</p>", text)
	case <-time.After(10 * time.Second):
		t.Fatal("callback never fired")
	}

	updates := reporter.snapshot()
	require.Len(t, updates, 2)
	assert.Equal(t, 2, seenAtCallback)

	assert.Equal(t, ActivityRunning, updates[0].State)
	assert.Equal(t, "Translating message with Argos Translate (offline)…", updates[0].Text)
	assert.NotEmpty(t, updates[0].ID)

	assert.Equal(t, ActivityCompleted, updates[1].State)
	assert.Equal(t, updates[0].ID, updates[1].ID)
	assert.NoError(t, updates[1].Err)
	assert.False(t, updates[1].FinishedAt.IsZero())
}

func TestTranslateDocumentWithActivity_Failure(t *testing.T) {
	reg, _ := helperRegistry(t, testutil.FailingHelper("model missing", 2))
	o := NewOrchestrator(reg, fakeSettings{target: "es", provider: "argos"}, nil)
	reporter := &recordingReporter{}

	cb, ch := collect()
	_, err := o.TranslateDocumentWithActivity(context.Background(), "<p>Hello</p>", reporter, cb)
	require.NoError(t, err)

	got := await(t, ch)
	assert.True(t, provider.IsKind(got.err, provider.HelperExecutionFailed))

	updates := reporter.snapshot()
	require.Len(t, updates, 2)
	assert.Equal(t, ActivityCompleted, updates[1].State)
	assert.Contains(t, updates[1].Text, "model missing")
}

func TestTranslateDocumentWithActivity_Cancelled(t *testing.T) {
	reg, _ := helperRegistry(t, "exec sleep 30")
	o := NewOrchestrator(reg, fakeSettings{target: "es", provider: "google"}, nil)
	reporter := &recordingReporter{}

	ctx, cancel := context.WithCancel(context.Background())
	cb, ch := collect()
	_, err := o.TranslateDocumentWithActivity(ctx, "<p>Hello</p>", reporter, cb)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	cancel()

	got := await(t, ch)
	assert.True(t, provider.IsKind(got.err, provider.Cancelled))

	updates := reporter.snapshot()
	require.Len(t, updates, 2)
	assert.Equal(t, ActivityCancelled, updates[1].State)
	assert.Equal(t, "Translating message with Google Translate (online)…", updates[0].Text)
}

func TestTranslateDocumentWithActivity_NoActivityOnEarlyFailure(t *testing.T) {
	o := NewOrchestrator(provider.NewRegistry(nil), fakeSettings{provider: "missing"}, nil)
	reporter := &recordingReporter{}

	op, err := o.TranslateDocumentWithActivity(context.Background(), "<p>x</p>", reporter, nil)
	assert.Nil(t, op)
	assert.NoError(t, err)

	_, err = o.TranslateDocumentWithActivity(context.Background(), "", reporter, nil)
	assert.True(t, provider.IsKind(err, provider.InvalidArgument))

	assert.Empty(t, reporter.snapshot())
}
