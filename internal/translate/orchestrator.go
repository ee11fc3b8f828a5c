package translate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costantinoai/evolution-mail-translate/internal/logging"
	"github.com/costantinoai/evolution-mail-translate/internal/provider"
)

const (
	// DefaultTargetLanguage is used when no target language is configured.
	DefaultTargetLanguage = "en"

	// DefaultProviderID is used when no provider is configured.
	DefaultProviderID = "google"
)

// Settings is the configuration read at the start of every request.
type Settings interface {
	TargetLanguage() string
	ProviderID() string

	// Timeout bounds a single translation. Zero means no deadline.
	Timeout() time.Duration
}

// Providers resolves a provider id to a fresh provider instance.
type Providers interface {
	Lookup(id string) (provider.Provider, error)
}

// Orchestrator resolves settings and a provider for each document and starts
// the translation. It must only be used from the UI goroutine.
type Orchestrator struct {
	providers Providers
	settings  Settings
	log       logrus.FieldLogger
}

// NewOrchestrator creates an orchestrator. A nil logger discards output.
func NewOrchestrator(providers Providers, settings Settings, logger logrus.FieldLogger) *Orchestrator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Orchestrator{
		providers: providers,
		settings:  settings,
		log:       logger.WithField("component", "orchestrator"),
	}
}

// TranslateDocument starts translating html with the configured provider.
//
// An empty html returns an InvalidArgument error and onComplete is never
// called. When the configured provider cannot be found the failure is only
// logged: the result is (nil, nil) and onComplete is never called. Otherwise
// onComplete fires once from the provider's goroutine.
func (o *Orchestrator) TranslateDocument(ctx context.Context, html string, onComplete provider.Callback) (*provider.Operation, error) {
	p, req, err := o.prepare(html)
	if err != nil || p == nil {
		return nil, err
	}
	return o.start(ctx, p, req, onComplete), nil
}

// prepare validates html and resolves the request and provider. A nil
// provider with a nil error means the lookup failed and was logged.
func (o *Orchestrator) prepare(html string) (provider.Provider, provider.Request, error) {
	if html == "" {
		return nil, provider.Request{}, provider.Errorf(provider.InvalidArgument, "", "document is empty")
	}

	target := DefaultTargetLanguage
	providerID := DefaultProviderID
	if o.settings != nil {
		if v := o.settings.TargetLanguage(); v != "" {
			target = v
		}
		if v := o.settings.ProviderID(); v != "" {
			providerID = v
		}
	}

	p, err := o.providers.Lookup(providerID)
	if err != nil {
		o.log.WithError(err).WithField("provider", providerID).Warn("No provider found")
		return nil, provider.Request{}, nil
	}

	req := provider.Request{
		Input:          html,
		IsHTML:         true,
		TargetLanguage: target,
	}
	return p, req, nil
}

func (o *Orchestrator) start(ctx context.Context, p provider.Provider, req provider.Request, onComplete provider.Callback) *provider.Operation {
	var timeout time.Duration
	if o.settings != nil {
		timeout = o.settings.Timeout()
	}

	o.log.WithFields(logrus.Fields{
		"provider": p.ID(),
		"target":   req.TargetLanguage,
		"bytes":    len(req.Input),
	}).Debug("Starting translation")

	if timeout <= 0 {
		return p.TranslateAsync(ctx, req, onComplete)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	op := p.TranslateAsync(ctx, req, onComplete)
	go func() {
		<-op.Done()
		cancel()
	}()
	return op
}
