package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/costantinoai/evolution-mail-translate/internal/app"
	"github.com/costantinoai/evolution-mail-translate/internal/logging"
	"github.com/costantinoai/evolution-mail-translate/internal/model"
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
	"github.com/costantinoai/evolution-mail-translate/internal/store"
	"github.com/costantinoai/evolution-mail-translate/internal/translate"
)

func newTranslateCmd() *cobra.Command {
	var (
		asText     bool
		target     string
		providerID string
		timeout    time.Duration
		noHistory  bool
	)

	cmd := &cobra.Command{
		Use:   "translate [file|-]",
		Short: "Translate an HTML or text document",
		Long: `Translate the document in file, or stdin when file is "-" or missing, and
print the result to stdout. Input is treated as HTML unless --text is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if target != "" {
				cfg.Translate.TargetLanguage = target
			}
			if providerID != "" {
				cfg.Translate.ProviderID = providerID
			}

			logger, err := logging.New(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			name, input, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			res := runTranslate(ctx, cfg, app.NewRegistry(cfg, logger), input, asText, logger)

			if !noHistory && !provider.IsKind(res.err, provider.Cancelled) {
				recordCLIHistory(cmd.Context(), "cli:"+name, res, logger)
			}

			if res.err != nil {
				return res.err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.text)
			return err
		},
	}

	cmd.Flags().BoolVar(&asText, "text", false, "Treat input as plain text instead of HTML")
	cmd.Flags().StringVar(&target, "target", "", "Target language code (default from config)")
	cmd.Flags().StringVar(&providerID, "provider", "", "Provider id (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 = translate.timeout_sec)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the translation in the history")

	return cmd
}

// readInput reads the document named by args, or stdin.
func readInput(args []string, stdin io.Reader) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return "stdin", string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return filepath.Base(args[0]), string(data), nil
}

// translateResult is the outcome of one headless translation.
type translateResult struct {
	providerID string
	request    provider.Request
	text       string
	err        error
}

// runTranslate translates input and waits for the result. HTML goes through
// the orchestrator; plain text is sent to the configured provider directly
// so the helper receives --text.
func runTranslate(ctx context.Context, cfg *model.AppConfig, reg *provider.Registry, input string, asText bool, logger logrus.FieldLogger) translateResult {
	settings := model.NewSettings(cfg)
	providerID := settings.ProviderID()
	if providerID == "" {
		providerID = translate.DefaultProviderID
	}
	res := translateResult{providerID: providerID}

	var op *provider.Operation
	if asText {
		p, err := reg.Lookup(providerID)
		if err != nil {
			res.err = err
			return res
		}
		target := settings.TargetLanguage()
		if target == "" {
			target = translate.DefaultTargetLanguage
		}
		if t := settings.Timeout(); t > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t)
			defer cancel()
		}
		op = p.TranslateAsync(ctx, provider.Request{Input: input, TargetLanguage: target}, nil)
	} else {
		orch := translate.NewOrchestrator(reg, settings, logger)
		var err error
		op, err = orch.TranslateDocument(ctx, input, nil)
		if err != nil {
			res.err = err
			return res
		}
		if op == nil {
			// The orchestrator only logs a missing provider.
			res.err = provider.Errorf(provider.ProviderNotFound, providerID, "no provider registered with this id")
			return res
		}
	}

	res.request = op.Request
	res.text, res.err = op.Wait()
	return res
}

// recordCLIHistory stores res in the history database. Failures are only
// logged so they never hide the translation.
func recordCLIHistory(ctx context.Context, messageID string, res translateResult, logger logrus.FieldLogger) {
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.WithError(err).Warn("Opening history database failed")
		return
	}
	defer s.Close()

	rec := model.HistoryRecord{
		MessageID:      messageID,
		ProviderID:     res.providerID,
		TargetLanguage: res.request.TargetLanguage,
		Status:         model.HistoryStatusSuccess,
		InputBytes:     len(res.request.Input),
		OutputBytes:    len(res.text),
	}
	if res.err != nil {
		rec.Status = model.HistoryStatusFailed
		rec.ErrorText = res.err.Error()
	}
	if err := s.RecordTranslation(ctx, rec); err != nil {
		logger.WithError(err).Warn("Recording translation failed")
	}
}
