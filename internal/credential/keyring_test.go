package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetDelete(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	require.NoError(t, s.Set(IMAPPasswordKey("work"), "hunter2"))

	pw, err := s.IMAPPassword("work")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	require.NoError(t, s.Delete(IMAPPasswordKey("work")))

	_, err = s.IMAPPassword("work")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIMAPPasswordKey(t *testing.T) {
	assert.Equal(t, "imap-password/work", IMAPPasswordKey("work"))
}
