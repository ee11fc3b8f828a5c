package app

import (
	"github.com/sirupsen/logrus"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
	"github.com/costantinoai/evolution-mail-translate/internal/provider/subprocess"
)

// NewRegistry returns a registry with every built-in provider. Provider
// instances read cfg when they are built, so settings saved from the UI
// apply to the next translation.
func NewRegistry(cfg *model.AppConfig, logger logrus.FieldLogger) *provider.Registry {
	reg := provider.NewRegistry(logger)
	subprocess.RegisterBuiltins(reg, func() subprocess.Options {
		return subprocess.Options{
			HelperPath:      cfg.Translate.HelperPath,
			InterpreterPath: cfg.Translate.InterpreterPath,
			InstallOnDemand: cfg.Translate.InstallOnDemand,
			Debug:           cfg.Translate.Debug,
			Logger:          logger,
		}
	})
	return reg
}

// providerName returns the display name registered for id, or id itself.
func providerName(reg *provider.Registry, id string) string {
	for _, d := range reg.Descriptors() {
		if d.ID == id {
			return d.DisplayName
		}
	}
	return id
}
