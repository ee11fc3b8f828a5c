package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/costantinoai/evolution-mail-translate/internal/credential"
	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

func newPasswordCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "password <account-id>",
		Short: "Store an IMAP password in the system keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(configPath)
			if err != nil {
				return err
			}
			acct, ok := findAccount(cfg, args[0])
			if !ok {
				return fmt.Errorf("no account %q in %s", args[0], configPath)
			}
			if acct.Type != model.AccountTypeIMAP {
				return fmt.Errorf("account %q is not an IMAP account", acct.ID)
			}

			creds, err := credential.Open()
			if err != nil {
				return err
			}
			key := credential.IMAPPasswordKey(acct.ID)

			if remove {
				if err := creds.Delete(key); err != nil && !errors.Is(err, credential.ErrNotFound) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed password for %s\n", acct.ID)
				return nil
			}

			var password string
			err = huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("Password for %s@%s", acct.Username, acct.Host)).
					EchoMode(huh.EchoModePassword).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return errors.New("password is required")
						}
						return nil
					}).
					Value(&password),
			)).Run()
			if err != nil {
				return err
			}

			if err := creds.Set(key, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved password for %s\n", acct.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "Remove the stored password instead")

	return cmd
}

func findAccount(cfg *model.AppConfig, id string) (model.AccountConfig, bool) {
	for _, a := range cfg.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return model.AccountConfig{}, false
}
