package subprocess

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costantinoai/evolution-mail-translate/internal/logging"
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
)

// waitDelay bounds how long Wait keeps reading pipes after the helper is
// killed, in case it left children holding stdout open.
const waitDelay = 2 * time.Second

// Options are the per-request settings a provider instance is built with.
type Options struct {
	// HelperPath and InterpreterPath override helper resolution.
	HelperPath      string
	InterpreterPath string

	// InstallOnDemand lets the offline helper download missing models.
	InstallOnDemand bool

	// Debug passes --debug to the helper.
	Debug bool

	// Logger receives provider diagnostics. Nil discards them.
	Logger logrus.FieldLogger

	// Locator replaces the default helper/interpreter lookup when non-nil.
	Locator *Locator
}

// Provider runs one translation through an external helper process.
type Provider struct {
	variant Variant
	opts    Options
	locator Locator
	log     logrus.FieldLogger
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider for variant v.
func New(v Variant, opts Options) *Provider {
	locator := DefaultLocator(opts.HelperPath, opts.InterpreterPath)
	if opts.Locator != nil {
		locator = *opts.Locator
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Provider{
		variant: v,
		opts:    opts,
		locator: locator,
		log: logger.WithFields(logrus.Fields{
			"component": "subprocess",
			"provider":  v.ID,
		}),
	}
}

// ID returns the variant id.
func (p *Provider) ID() string { return p.variant.ID }

// DisplayName returns the variant's display name.
func (p *Provider) DisplayName() string { return p.variant.DisplayName }

// TranslateAsync validates req, resolves the helper, and starts it. Failures
// that happen before the helper runs still resolve the operation and fire
// done, from a separate goroutine.
func (p *Provider) TranslateAsync(ctx context.Context, req provider.Request, done provider.Callback) *provider.Operation {
	op := provider.NewOperation(p.variant.ID, req)

	if req.Input == "" {
		go p.complete(op, done, "", provider.Errorf(provider.InvalidArgument, p.variant.ID, "input is empty"))
		return op
	}
	if req.TargetLanguage == "" {
		go p.complete(op, done, "", provider.Errorf(provider.InvalidArgument, p.variant.ID, "target language is required"))
		return op
	}

	helper, err := p.locator.Helper(p.variant.ID, p.variant.Script)
	if err != nil {
		go p.complete(op, done, "", err)
		return op
	}
	interpreter, err := p.locator.Interpreter(p.variant.ID)
	if err != nil {
		go p.complete(op, done, "", err)
		return op
	}

	args := p.args(helper, req)
	p.log.WithFields(logrus.Fields{
		"interpreter": interpreter,
		"args":        strings.Join(args, " "),
	}).Debug("Starting translate helper")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, interpreter, args...)
	cmd.Stdin = strings.NewReader(req.Input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			go p.complete(op, done, "", &provider.Error{Kind: provider.Cancelled, Provider: p.variant.ID, Err: ctx.Err()})
			return op
		}
		go p.complete(op, done, "", &provider.Error{
			Kind:     provider.HelperExecutionFailed,
			Provider: p.variant.ID,
			Message:  "failed to spawn helper",
			Err:      err,
		})
		return op
	}

	go func() {
		waitErr := cmd.Wait()
		result, err := p.outcome(ctx, waitErr, stdout.Bytes(), stderr.String())
		p.complete(op, done, result, err)
	}()

	return op
}

// TranslateFinish blocks until op resolves.
func (p *Provider) TranslateFinish(op *provider.Operation) (string, error) {
	return op.Wait()
}

// args builds the helper argument vector, excluding the interpreter.
func (p *Provider) args(helper string, req provider.Request) []string {
	args := []string{helper, "--target", req.TargetLanguage}
	if p.variant.Selector != "" {
		args = append(args, "--provider", p.variant.Selector)
	}
	if req.IsHTML {
		args = append(args, "--html")
	} else {
		args = append(args, "--text")
	}
	if p.variant.InstallPolicy {
		if p.opts.InstallOnDemand {
			args = append(args, "--install-on-demand")
		} else {
			args = append(args, "--no-install-on-demand")
		}
	}
	if p.opts.Debug {
		args = append(args, "--debug")
	}
	return args
}

// outcome maps the finished process to a translation or an error.
func (p *Provider) outcome(ctx context.Context, waitErr error, stdout []byte, stderr string) (string, error) {
	if waitErr != nil {
		if ctx.Err() != nil {
			return "", &provider.Error{Kind: provider.Cancelled, Provider: p.variant.ID, Err: ctx.Err()}
		}

		fields := logrus.Fields{"stderr": stderr}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			fields["exit_code"] = exitErr.ExitCode()
		}
		p.log.WithFields(fields).Warn("Translate helper failed")

		return "", &provider.Error{
			Kind:     provider.HelperExecutionFailed,
			Provider: p.variant.ID,
			Message:  stderr,
			Err:      waitErr,
		}
	}

	if translated, ok := parseResponse(stdout); ok {
		return translated, nil
	}

	p.log.WithField("bytes", len(stdout)).Debug("Helper output is not a translation object, using raw output")
	return string(stdout), nil
}

func (p *Provider) complete(op *provider.Operation, done provider.Callback, result string, err error) {
	if !op.Resolve(result, err) {
		return
	}
	if done != nil {
		done(p, op)
	}
}
