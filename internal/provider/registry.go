package provider

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/costantinoai/evolution-mail-translate/internal/logging"
)

// Constructor builds a fresh provider instance.
type Constructor func() Provider

// Descriptor is a registry entry.
type Descriptor struct {
	ID          string
	DisplayName string
	New         Constructor
}

// Registry maps provider ids to constructors. It is normally populated once
// at startup and then handed to the orchestrator.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
	log         logrus.FieldLogger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger logrus.FieldLogger) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Registry{
		descriptors: make(map[string]Descriptor),
		log:         logger.WithField("component", "registry"),
	}
}

// Register adds ctor under the id reported by a throwaway instance. A
// constructor yielding no instance or an empty id is logged and ignored.
// Registering an id twice replaces the earlier entry.
func (r *Registry) Register(ctor Constructor) {
	if ctor == nil {
		r.log.Warn("Ignoring provider registration with nil constructor")
		return
	}

	probe := ctor()
	if probe == nil {
		r.log.Warn("Ignoring provider registration: constructor returned nil")
		return
	}

	id := probe.ID()
	if id == "" {
		r.log.WithField("display_name", probe.DisplayName()).
			Warn("Ignoring provider registration with empty id")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[id]; exists {
		r.log.WithField("provider", id).Debug("Replacing registered provider")
	}
	r.descriptors[id] = Descriptor{
		ID:          id,
		DisplayName: probe.DisplayName(),
		New:         ctor,
	}
}

// Lookup returns a new instance of the provider registered under id.
func (r *Registry) Lookup(id string) (Provider, error) {
	r.mu.RLock()
	desc, ok := r.descriptors[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &Error{Kind: ProviderNotFound, Provider: id, Message: "no provider registered"}
	}

	p := desc.New()
	if p == nil {
		return nil, &Error{Kind: ProviderNotFound, Provider: id, Message: "constructor returned nil"}
	}
	if got := p.ID(); got != id {
		r.log.WithFields(logrus.Fields{
			"provider": id,
			"got":      got,
		}).Warn("Registered constructor built a provider with a different id")
		return nil, &Error{Kind: ProviderNotFound, Provider: id, Message: "constructor built provider " + got}
	}
	return p, nil
}

// ListIDs returns the registered ids, sorted.
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.descriptors))
	for id := range r.descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Descriptors returns all registry entries sorted by id.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
