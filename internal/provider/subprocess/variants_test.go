package subprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costantinoai/evolution-mail-translate/internal/provider"
)

func TestRegisterBuiltins(t *testing.T) {
	reg := provider.NewRegistry(nil)
	RegisterBuiltins(reg, nil)

	assert.Equal(t, []string{"argos", "google", "libre", "mymemory"}, reg.ListIDs())

	p, err := reg.Lookup("argos")
	require.NoError(t, err)
	assert.Equal(t, "Argos Translate (offline)", p.DisplayName())

	p, err = reg.Lookup("google")
	require.NoError(t, err)
	assert.Equal(t, "Google Translate (online)", p.DisplayName())
}

func TestConstructor_ReadsOptionsPerInstance(t *testing.T) {
	calls := 0
	ctor := Constructor(Argos, func() Options {
		calls++
		return Options{InstallOnDemand: calls%2 == 0}
	})

	first := ctor().(*Provider)
	second := ctor().(*Provider)

	assert.Equal(t, 2, calls)
	assert.False(t, first.opts.InstallOnDemand)
	assert.True(t, second.opts.InstallOnDemand)
}

func TestBuiltins_OnlineVariantsShareScript(t *testing.T) {
	for _, v := range Builtins() {
		if v.InstallPolicy {
			assert.Equal(t, offlineScript, v.Script, v.ID)
			assert.Empty(t, v.Selector, v.ID)
			continue
		}
		assert.Equal(t, onlineScript, v.Script, v.ID)
		assert.Equal(t, v.ID, v.Selector)
	}
}
