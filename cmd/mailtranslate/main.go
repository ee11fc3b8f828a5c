// mailtranslate is a terminal mail reader that translates the message on
// screen through external translation helpers.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/costantinoai/evolution-mail-translate/internal/app"
	"github.com/costantinoai/evolution-mail-translate/internal/credential"
	"github.com/costantinoai/evolution-mail-translate/internal/logging"
	"github.com/costantinoai/evolution-mail-translate/internal/mail"
	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/store"
)

// Version information (set via -ldflags during build)
var version = "dev"

// Global flags
var (
	configPath string
	dbPath     string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mailtranslate",
		Short: "Read mail and translate it in the terminal",
		Long: `mailtranslate lists messages from the configured accounts and translates
the message on screen with an external helper (Argos offline, or Google,
MyMemory and LibreTranslate online). Press t to translate, o to show the
original again.

Commands:
  translate   Translate a document from a file or stdin
  providers   List translation providers and whether their helper is installed
  history     Show recent translations
  password    Store an IMAP account password in the system keyring`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Config file")
	root.PersistentFlags().StringVar(&dbPath, "db", model.DefaultHistoryPath(), "Message cache and history database")

	root.AddCommand(
		newTranslateCmd(),
		newProvidersCmd(),
		newHistoryCmd(),
		newPasswordCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mailtranslate: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the interactive reader. Logs go to a file while the
// terminal is in use.
func runTUI(cfg *model.AppConfig) error {
	logger, closer, err := logging.NewFile(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	sources := buildSources(cfg, logger)

	m := app.New(app.Deps{
		Config:     cfg,
		ConfigPath: configPath,
		Store:      s,
		Registry:   app.NewRegistry(cfg, logger),
		Sources:    sources,
		Logger:     logger,
	})
	defer m.Dispatcher().Stop()

	logger.WithField("accounts", len(sources)).Info("Starting mailtranslate")

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// buildSources creates a mail source for every enabled account. Accounts
// that cannot be set up are logged and skipped.
func buildSources(cfg *model.AppConfig, logger logrus.FieldLogger) []mail.Source {
	var (
		creds    *credential.Store
		credsErr error
		opened   bool
	)
	password := func(accountID string) (string, error) {
		if !opened {
			creds, credsErr = credential.Open()
			opened = true
		}
		if credsErr != nil {
			return "", credsErr
		}
		return creds.IMAPPassword(accountID)
	}

	var sources []mail.Source
	for _, acct := range cfg.Accounts {
		if !acct.Enabled {
			continue
		}
		src, err := mail.NewSource(acct, password)
		if err != nil {
			logger.WithError(err).WithField("account", acct.ID).Warn("Skipping account")
			continue
		}
		sources = append(sources, src)
	}
	return sources
}
