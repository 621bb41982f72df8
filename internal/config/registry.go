package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MrWong99/cadenza/pkg/provider/asr"
	"github.com/MrWong99/cadenza/pkg/provider/coach"
	"github.com/MrWong99/cadenza/pkg/provider/embeddings"
	"github.com/MrWong99/cadenza/pkg/provider/prosody"
	"github.com/MrWong99/cadenza/pkg/provider/spectral"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	asr        map[string]func(ProviderEntry) (asr.Provider, error)
	prosody    map[string]func(ProviderEntry) (prosody.Provider, error)
	spectral   map[string]func(ProviderEntry) (spectral.Provider, error)
	embeddings map[string]func(ProviderEntry) (embeddings.Provider, error)
	coach      map[string]func(ProviderEntry) (coach.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		asr:        make(map[string]func(ProviderEntry) (asr.Provider, error)),
		prosody:    make(map[string]func(ProviderEntry) (prosody.Provider, error)),
		spectral:   make(map[string]func(ProviderEntry) (spectral.Provider, error)),
		embeddings: make(map[string]func(ProviderEntry) (embeddings.Provider, error)),
		coach:      make(map[string]func(ProviderEntry) (coach.Provider, error)),
	}
}

// RegisterASR registers a transcription provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterASR(name string, factory func(ProviderEntry) (asr.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asr[name] = factory
}

// RegisterProsody registers an acoustic measurement provider factory under name.
func (r *Registry) RegisterProsody(name string, factory func(ProviderEntry) (prosody.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prosody[name] = factory
}

// RegisterSpectral registers a spectral measurement provider factory under name.
func (r *Registry) RegisterSpectral(name string, factory func(ProviderEntry) (spectral.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spectral[name] = factory
}

// RegisterEmbeddings registers an embeddings provider factory under name.
func (r *Registry) RegisterEmbeddings(name string, factory func(ProviderEntry) (embeddings.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddings[name] = factory
}

// RegisterCoach registers a coach provider factory under name.
func (r *Registry) RegisterCoach(name string, factory func(ProviderEntry) (coach.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coach[name] = factory
}

// CreateASR instantiates a transcription provider using the factory registered
// under entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateASR(entry ProviderEntry) (asr.Provider, error) {
	r.mu.RLock()
	factory, ok := r.asr[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: asr/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateProsody instantiates an acoustic measurement provider using the
// factory registered under entry.Name.
func (r *Registry) CreateProsody(entry ProviderEntry) (prosody.Provider, error) {
	r.mu.RLock()
	factory, ok := r.prosody[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: prosody/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateSpectral instantiates a spectral measurement provider using the
// factory registered under entry.Name.
func (r *Registry) CreateSpectral(entry ProviderEntry) (spectral.Provider, error) {
	r.mu.RLock()
	factory, ok := r.spectral[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: spectral/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateEmbeddings instantiates an embeddings provider using the factory
// registered under entry.Name.
func (r *Registry) CreateEmbeddings(entry ProviderEntry) (embeddings.Provider, error) {
	r.mu.RLock()
	factory, ok := r.embeddings[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: embeddings/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateCoach instantiates a coach provider using the factory registered
// under entry.Name.
func (r *Registry) CreateCoach(entry ProviderEntry) (coach.Provider, error) {
	r.mu.RLock()
	factory, ok := r.coach[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: coach/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
