package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/provider/realtime"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	llm      map[string]func(ProviderEntry) (llm.Provider, error)
	realtime map[string]func(ProviderEntry) (realtime.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		llm:      make(map[string]func(ProviderEntry) (llm.Provider, error)),
		realtime: make(map[string]func(ProviderEntry) (realtime.Provider, error)),
	}
}

// RegisterLLM registers an LLM provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterLLM(name string, factory func(ProviderEntry) (llm.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llm[name] = factory
}

// RegisterRealtime registers a realtime provider factory under name.
func (r *Registry) RegisterRealtime(name string, factory func(ProviderEntry) (realtime.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.realtime[name] = factory
}

// CreateLLM instantiates an LLM provider using the factory registered under entry.Name.
// Returns [ErrProviderNotRegistered] if no factory has been registered for that name.
func (r *Registry) CreateLLM(entry ProviderEntry) (llm.Provider, error) {
	r.mu.RLock()
	factory, ok := r.llm[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: llm/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateRealtime instantiates a realtime provider using the factory registered under entry.Name.
func (r *Registry) CreateRealtime(entry ProviderEntry) (realtime.Provider, error) {
	r.mu.RLock()
	factory, ok := r.realtime[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: realtime/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
