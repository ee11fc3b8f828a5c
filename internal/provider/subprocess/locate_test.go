package subprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costantinoai/evolution-mail-translate/internal/provider"
)

type locatorFixture struct {
	root      string
	system    string
	home      string
	userLocal string
	venv      string
}

func newLocatorFixture(t *testing.T) locatorFixture {
	t.Helper()
	root := t.TempDir()
	home := filepath.Join(root, "home")
	return locatorFixture{
		root:      root,
		system:    filepath.Join(root, "usr", "share", "evolution-translate", "translate"),
		home:      home,
		userLocal: filepath.Join(home, ".local", "lib", "evolution-translate", "translate"),
		venv:      filepath.Join(home, ".local", "lib", "evolution-translate", "venv", "bin", "python"),
	}
}

func (f locatorFixture) locator(env map[string]string) Locator {
	return Locator{
		SystemDir: f.system,
		HomeDir:   f.home,
		Getenv:    func(k string) string { return env[k] },
	}
}

func touch(t *testing.T, path string, mode os.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
	return path
}

func TestLocator_HelperPrecedence(t *testing.T) {
	f := newLocatorFixture(t)
	system := touch(t, filepath.Join(f.system, offlineScript), 0o644)
	local := touch(t, filepath.Join(f.userLocal, offlineScript), 0o644)
	fromEnv := touch(t, filepath.Join(f.root, "env-helper.py"), 0o644)
	fromConfig := touch(t, filepath.Join(f.root, "config-helper.py"), 0o644)

	env := map[string]string{HelperEnv: fromEnv}

	l := f.locator(env)
	l.HelperOverride = fromConfig
	got, err := l.Helper("argos", offlineScript)
	require.NoError(t, err)
	assert.Equal(t, fromConfig, got)

	l = f.locator(env)
	got, err = l.Helper("argos", offlineScript)
	require.NoError(t, err)
	assert.Equal(t, fromEnv, got)

	l = f.locator(nil)
	got, err = l.Helper("argos", offlineScript)
	require.NoError(t, err)
	assert.Equal(t, system, got)

	require.NoError(t, os.Remove(system))
	got, err = l.Helper("argos", offlineScript)
	require.NoError(t, err)
	assert.Equal(t, local, got)
}

func TestLocator_HelperMissingEverywhere(t *testing.T) {
	f := newLocatorFixture(t)

	_, err := f.locator(nil).Helper("google", onlineScript)
	require.Error(t, err)
	assert.True(t, provider.IsKind(err, provider.HelperNotFound))
	assert.Contains(t, err.Error(), onlineScript)
}

func TestLocator_HelperOverrideMustExist(t *testing.T) {
	f := newLocatorFixture(t)
	touch(t, filepath.Join(f.system, offlineScript), 0o644)

	l := f.locator(map[string]string{HelperEnv: filepath.Join(f.root, "nope.py")})
	_, err := l.Helper("argos", offlineScript)
	assert.Equal(t, provider.HelperNotFound, provider.KindOf(err))
}

func TestLocator_HelperIgnoresDirectories(t *testing.T) {
	f := newLocatorFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.system, offlineScript), 0o755))

	_, err := f.locator(nil).Helper("argos", offlineScript)
	assert.Equal(t, provider.HelperNotFound, provider.KindOf(err))
}

func TestLocator_InterpreterPrecedence(t *testing.T) {
	f := newLocatorFixture(t)
	venv := touch(t, f.venv, 0o755)
	fromEnv := touch(t, filepath.Join(f.root, "env-python"), 0o755)
	fromConfig := touch(t, filepath.Join(f.root, "config-python"), 0o755)

	l := f.locator(map[string]string{InterpreterEnv: fromEnv})
	l.InterpreterOverride = fromConfig
	got, err := l.Interpreter("argos")
	require.NoError(t, err)
	assert.Equal(t, fromConfig, got)

	l.InterpreterOverride = ""
	got, err = l.Interpreter("argos")
	require.NoError(t, err)
	assert.Equal(t, fromEnv, got)

	got, err = f.locator(nil).Interpreter("argos")
	require.NoError(t, err)
	assert.Equal(t, venv, got)
}

func TestLocator_InterpreterMustBeExecutable(t *testing.T) {
	f := newLocatorFixture(t)
	touch(t, f.venv, 0o644)

	_, err := f.locator(nil).Interpreter("argos")
	assert.Equal(t, provider.InterpreterNotFound, provider.KindOf(err))

	_, err = f.locator(map[string]string{InterpreterEnv: f.venv}).Interpreter("argos")
	assert.Equal(t, provider.InterpreterNotFound, provider.KindOf(err))
}

func TestLocator_NoHomeDir(t *testing.T) {
	l := Locator{SystemDir: t.TempDir()}

	_, err := l.Helper("argos", offlineScript)
	assert.Equal(t, provider.HelperNotFound, provider.KindOf(err))

	_, err = l.Interpreter("argos")
	assert.Equal(t, provider.InterpreterNotFound, provider.KindOf(err))
}
