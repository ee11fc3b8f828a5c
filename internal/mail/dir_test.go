package mail

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

func writeEML(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), crlf(body), 0o644))
}

func TestDirSource_ListAndFetch(t *testing.T) {
	dir := t.TempDir()
	writeEML(t, dir, "hello.eml", alternativeMessage)
	writeEML(t, dir, "plain.eml", plainMessage)
	writeEML(t, dir, "notes.txt", "not mail")

	src := NewDirSource("local", dir, 0)
	assert.Equal(t, "local", src.AccountID())

	msgs, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// The dated message sorts before the undated one.
	assert.Equal(t, "hello@example.com", msgs[0].ID)
	assert.Empty(t, msgs[0].Raw)

	full, err := src.Fetch(context.Background(), "plain@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Plain", full.Subject)
	assert.NotEmpty(t, full.Raw)

	body, err := BodyHTML(full.Raw)
	require.NoError(t, err)
	assert.Contains(t, body, "<br>")
}

func TestDirSource_Limit(t *testing.T) {
	dir := t.TempDir()
	writeEML(t, dir, "hello.eml", alternativeMessage)
	writeEML(t, dir, "plain.eml", plainMessage)

	msgs, err := NewDirSource("local", dir, 1).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestDirSource_FetchUnknown(t *testing.T) {
	src := NewDirSource("local", t.TempDir(), 0)

	_, err := src.Fetch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestDirSource_MissingDir(t *testing.T) {
	_, err := NewDirSource("local", filepath.Join(t.TempDir(), "missing"), 0).List(context.Background())
	assert.Error(t, err)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(model.AccountConfig{ID: "d", Type: model.AccountTypeDir, Path: "/tmp"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &DirSource{}, src)

	var asked string
	src, err = NewSource(model.AccountConfig{ID: "w", Type: model.AccountTypeIMAP, Host: "imap.example.com"},
		func(id string) (string, error) {
			asked = id
			return "secret", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "w", asked)
	assert.Equal(t, "w", src.AccountID())

	_, err = NewSource(model.AccountConfig{ID: "x", Type: "pop3"}, nil)
	assert.Error(t, err)
}

func TestAuthError(t *testing.T) {
	err := error(&AuthError{AccountID: "work", Message: "bad password"})
	assert.True(t, IsAuthError(err))
	assert.Equal(t, "auth error (work): bad password", err.Error())
	assert.False(t, IsAuthError(ErrMessageNotFound))
}
