package subprocess

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costantinoai/evolution-mail-translate/internal/provider"
	"github.com/costantinoai/evolution-mail-translate/tests/testutil"
)

// shellProvider builds a provider whose helper is the given shell body.
func shellProvider(t *testing.T, v Variant, body string, opts Options) *Provider {
	t.Helper()
	helper := testutil.WriteHelperScript(t, t.TempDir(), v.Script, body)
	opts.Locator = &Locator{
		HelperOverride:      helper,
		InterpreterOverride: testutil.ShellInterpreter,
	}
	return New(v, opts)
}

func translate(t *testing.T, p *Provider, req provider.Request) (string, error) {
	t.Helper()
	op := p.TranslateAsync(context.Background(), req, nil)
	require.NotNil(t, op)

	select {
	case <-op.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("translation did not finish")
	}
	return p.TranslateFinish(op)
}

func TestTranslateAsync_Success(t *testing.T) {
	p := shellProvider(t, Argos, testutil.JSONHelper("<p>Hola</p>"), Options{})

	out, err := translate(t, p, provider.Request{Input: "<p>Hello</p>", IsHTML: true, TargetLanguage: "es"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hola</p>", out)
}

func TestTranslateAsync_CallbackReceivesProviderAndOperation(t *testing.T) {
	p := shellProvider(t, Google, testutil.JSONHelper("hallo"), Options{})

	type result struct {
		id  string
		out string
		err error
	}
	ch := make(chan result, 1)

	op := p.TranslateAsync(context.Background(), provider.Request{Input: "hello", TargetLanguage: "de"},
		func(cb provider.Provider, op *provider.Operation) {
			out, err := cb.TranslateFinish(op)
			ch <- result{id: cb.ID(), out: out, err: err}
		})

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		assert.Equal(t, "google", r.id)
		assert.Equal(t, "hallo", r.out)
	case <-time.After(10 * time.Second):
		t.Fatal("callback never fired")
	}
	assert.Equal(t, "de", op.Request.TargetLanguage)
}

func TestTranslateAsync_ArgvAndStdin(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	stdinFile := filepath.Join(dir, "stdin")
	body := `printf '%s\n' "$@" > '` + argsFile + `'
cat > '` + stdinFile + `'
printf '{"translated":"ok"}'`

	tests := []struct {
		name    string
		variant Variant
		req     provider.Request
		opts    Options
		want    []string
	}{
		{
			name:    "argos html with install",
			variant: Argos,
			req:     provider.Request{Input: "<b>hi</b>", IsHTML: true, TargetLanguage: "es"},
			opts:    Options{InstallOnDemand: true},
			want:    []string{"--target", "es", "--html", "--install-on-demand"},
		},
		{
			name:    "argos text without install",
			variant: Argos,
			req:     provider.Request{Input: "hi", TargetLanguage: "fr", SourceLanguage: "en"},
			opts:    Options{},
			want:    []string{"--target", "fr", "--text", "--no-install-on-demand"},
		},
		{
			name:    "online selector with debug",
			variant: Libre,
			req:     provider.Request{Input: "hi", IsHTML: true, TargetLanguage: "it"},
			opts:    Options{Debug: true},
			want:    []string{"--target", "it", "--provider", "libre", "--html", "--debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := shellProvider(t, tt.variant, body, tt.opts)

			out, err := translate(t, p, tt.req)
			require.NoError(t, err)
			assert.Equal(t, "ok", out)

			rawArgs, err := os.ReadFile(argsFile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.Fields(string(rawArgs)))

			stdin, err := os.ReadFile(stdinFile)
			require.NoError(t, err)
			assert.Equal(t, tt.req.Input, string(stdin))
		})
	}
}

func TestTranslateAsync_NonZeroExit(t *testing.T) {
	p := shellProvider(t, Argos, testutil.FailingHelper("model missing", 1), Options{})

	out, err := translate(t, p, provider.Request{Input: "<p>Hello</p>", IsHTML: true, TargetLanguage: "es"})
	assert.Empty(t, out)
	require.Error(t, err)
	assert.True(t, provider.IsKind(err, provider.HelperExecutionFailed))
	assert.Contains(t, err.Error(), "model missing")

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "model missing", perr.Message)
}

func TestTranslateAsync_LenientOutput(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
	}{
		{name: "plain text", stdout: "Hola mundo"},
		{name: "missing field", stdout: `{"result":"x"}`},
		{name: "non-string field", stdout: `{"translated":5}`},
		{name: "json array", stdout: `["a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := "cat >/dev/null\nprintf '%s' '" + tt.stdout + "'"
			p := shellProvider(t, Google, body, Options{})

			out, err := translate(t, p, provider.Request{Input: "hello", TargetLanguage: "es"})
			require.NoError(t, err)
			assert.Equal(t, tt.stdout, out)
		})
	}
}

func TestTranslateAsync_InvalidArgument(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "spawned")
	body := "touch '" + marker + "'\n" + testutil.JSONHelper("x")
	p := shellProvider(t, Argos, body, Options{})

	tests := []struct {
		name string
		req  provider.Request
	}{
		{name: "empty input", req: provider.Request{TargetLanguage: "es"}},
		{name: "missing target", req: provider.Request{Input: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := make(chan struct{}, 1)
			op := p.TranslateAsync(context.Background(), tt.req, func(provider.Provider, *provider.Operation) {
				called <- struct{}{}
			})

			_, err := p.TranslateFinish(op)
			assert.True(t, provider.IsKind(err, provider.InvalidArgument))

			select {
			case <-called:
			case <-time.After(5 * time.Second):
				t.Fatal("callback not invoked")
			}

			assert.NoFileExists(t, marker)
		})
	}
}

func TestTranslateAsync_HelperNotFound(t *testing.T) {
	empty := t.TempDir()
	p := New(Argos, Options{Locator: &Locator{
		SystemDir:           filepath.Join(empty, "system"),
		HomeDir:             filepath.Join(empty, "home"),
		InterpreterOverride: testutil.ShellInterpreter,
		Getenv:              func(string) string { return "" },
	}})

	_, err := translate(t, p, provider.Request{Input: "hello", TargetLanguage: "es"})
	assert.Equal(t, provider.HelperNotFound, provider.KindOf(err))
}

func TestTranslateAsync_InterpreterNotFound(t *testing.T) {
	root := t.TempDir()
	system := filepath.Join(root, "system")
	testutil.WriteHelperScript(t, system, Argos.Script, testutil.JSONHelper("x"))

	p := New(Argos, Options{Locator: &Locator{
		SystemDir: system,
		HomeDir:   filepath.Join(root, "home"),
		Getenv:    func(string) string { return "" },
	}})

	_, err := translate(t, p, provider.Request{Input: "hello", TargetLanguage: "es"})
	assert.Equal(t, provider.InterpreterNotFound, provider.KindOf(err))
}

func TestTranslateAsync_Cancelled(t *testing.T) {
	p := shellProvider(t, Argos, "exec sleep 30", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	op := p.TranslateAsync(ctx, provider.Request{Input: "hello", TargetLanguage: "es"}, nil)

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-op.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("cancelled helper was not killed")
	}

	_, err := p.TranslateFinish(op)
	assert.Equal(t, provider.Cancelled, provider.KindOf(err))
}

func TestTranslateAsync_AlreadyCancelledContext(t *testing.T) {
	p := shellProvider(t, Argos, testutil.JSONHelper("x"), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := p.TranslateAsync(ctx, provider.Request{Input: "hello", TargetLanguage: "es"}, nil)
	_, err := p.TranslateFinish(op)
	assert.Equal(t, provider.Cancelled, provider.KindOf(err))
}
