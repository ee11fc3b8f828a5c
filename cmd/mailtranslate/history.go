package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/costantinoai/evolution-mail-translate/internal/store"
	"github.com/costantinoai/evolution-mail-translate/internal/ui/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit int
		prune int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent translations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("prune") {
				n, err := s.PruneHistory(ctx, prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d record(s)\n", n)
				return nil
			}

			recs, err := s.GetHistory(ctx, store.HistoryFilter{Limit: limit})
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, "No translations yet")
				return nil
			}
			for _, rec := range recs {
				fmt.Fprintf(out, "%-7s %s\n", rec.Status, history.FormatRecord(rec))
				if rec.ErrorText != "" {
					fmt.Fprintf(out, "        %s\n", firstLine(rec.ErrorText))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show")
	cmd.Flags().IntVar(&prune, "prune", 0, "Delete all but the newest N records")

	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
