package provider

import (
	"context"
	"sync"
)

// Request describes a single translation job.
type Request struct {
	// Input is the payload handed to the backend verbatim. Must be non-empty.
	Input string

	// IsHTML selects HTML-aware translation instead of plain text.
	IsHTML bool

	// SourceLanguage is the source language code. Empty means auto-detect.
	SourceLanguage string

	// TargetLanguage is the language code to translate into. Required.
	TargetLanguage string
}

// Callback is invoked exactly once when an operation started by
// TranslateAsync resolves. It runs on the goroutine that resolved the
// operation, never on the caller's goroutine, so implementations must hand
// the result off to whatever owns the UI state.
type Callback func(p Provider, op *Operation)

// Provider is the capability every translation backend implements.
//
// Instances are single-use: the registry builds a fresh one per request and
// it is dropped once its callback has fired.
type Provider interface {
	// ID returns the stable identifier the provider is registered under.
	ID() string

	// DisplayName returns the human-readable provider name.
	DisplayName() string

	// TranslateAsync starts translating req and returns immediately. The
	// returned operation resolves when the translation succeeds, fails, or
	// ctx is cancelled; done (if non-nil) is then called once.
	TranslateAsync(ctx context.Context, req Request, done Callback) *Operation

	// TranslateFinish blocks until op resolves and returns its outcome.
	TranslateFinish(op *Operation) (string, error)
}

// Operation is a pending translation. It resolves at most once.
type Operation struct {
	// ProviderID is the id of the provider that owns the operation.
	ProviderID string

	// Request is the request the operation was started with.
	Request Request

	once   sync.Once
	done   chan struct{}
	result string
	err    error
}

// NewOperation returns an unresolved operation for req.
func NewOperation(providerID string, req Request) *Operation {
	return &Operation{
		ProviderID: providerID,
		Request:    req,
		done:       make(chan struct{}),
	}
}

// Resolve records the outcome. Only the first call has any effect; it
// reports whether this call was the one that resolved the operation.
func (op *Operation) Resolve(result string, err error) bool {
	resolved := false
	op.once.Do(func() {
		op.result = result
		op.err = err
		close(op.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel that is closed once the operation resolves.
func (op *Operation) Done() <-chan struct{} {
	return op.done
}

// Wait blocks until the operation resolves and returns its outcome.
func (op *Operation) Wait() (string, error) {
	<-op.done
	return op.result, op.err
}
