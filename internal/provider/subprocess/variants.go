package subprocess

import (
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
)

const (
	offlineScript = "translate_runner.py"
	onlineScript  = "translate_runner_online.py"
)

// Variant describes one helper-backed provider.
type Variant struct {
	ID          string
	DisplayName string

	// Script is the helper file name looked up by the Locator.
	Script string

	// Selector is passed as --provider when non-empty.
	Selector string

	// InstallPolicy makes the provider send --install-on-demand or
	// --no-install-on-demand.
	InstallPolicy bool
}

var (
	// Argos translates offline with locally installed models.
	Argos = Variant{
		ID:            "argos",
		DisplayName:   "Argos Translate (offline)",
		Script:        offlineScript,
		InstallPolicy: true,
	}

	Google = Variant{
		ID:          "google",
		DisplayName: "Google Translate (online)",
		Script:      onlineScript,
		Selector:    "google",
	}

	MyMemory = Variant{
		ID:          "mymemory",
		DisplayName: "MyMemory (online)",
		Script:      onlineScript,
		Selector:    "mymemory",
	}

	Libre = Variant{
		ID:          "libre",
		DisplayName: "LibreTranslate (online)",
		Script:      onlineScript,
		Selector:    "libre",
	}
)

// Builtins returns every helper-backed variant.
func Builtins() []Variant {
	return []Variant{Argos, Google, MyMemory, Libre}
}

// Constructor returns a registry constructor for v. options is read each
// time an instance is built so settings changes apply to the next request.
func Constructor(v Variant, options func() Options) provider.Constructor {
	return func() provider.Provider {
		var opts Options
		if options != nil {
			opts = options()
		}
		return New(v, opts)
	}
}

// RegisterBuiltins registers all built-in variants with reg.
func RegisterBuiltins(reg *provider.Registry, options func() Options) {
	for _, v := range Builtins() {
		reg.Register(Constructor(v, options))
	}
}
