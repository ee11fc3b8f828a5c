package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/provider/subprocess"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List translation providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(configPath)
			if err != nil {
				return err
			}

			locator := subprocess.DefaultLocator(cfg.Translate.HelperPath, cfg.Translate.InterpreterPath)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tHELPER")
			for _, v := range subprocess.Builtins() {
				marker := ""
				if v.ID == cfg.Translate.ProviderID {
					marker = " *"
				}
				fmt.Fprintf(w, "%s%s\t%s\t%s\n", v.ID, marker, v.DisplayName, helperStatus(locator, v))
			}
			return w.Flush()
		},
	}
}

// helperStatus reports where the helper for v was found, or why not.
func helperStatus(l subprocess.Locator, v subprocess.Variant) string {
	path, err := l.Helper(v.ID, v.Script)
	if err != nil {
		return "missing"
	}
	if _, err := l.Interpreter(v.ID); err != nil {
		return path + " (no interpreter)"
	}
	return path
}
