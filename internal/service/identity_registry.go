package service

import (
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

// IdentityProviderRegistry holds identity providers keyed by identifier key.
// A later registration for the same key replaces the earlier one.
type IdentityProviderRegistry struct {
	mutex     deadlock.RWMutex
	providers map[string]IdentityProvider
}

// NewIdentityProviderRegistry registers the given providers.
func NewIdentityProviderRegistry(list ...IdentityProvider) *IdentityProviderRegistry {
	r := &IdentityProviderRegistry{providers: make(map[string]IdentityProvider)}
	for _, p := range list {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the provider for p.IdentifierKey().
func (r *IdentityProviderRegistry) Register(p IdentityProvider) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.providers[p.IdentifierKey()]; exists {
		log.Warn().Str("identifierKey", p.IdentifierKey()).Msg("Replacing registered identity provider")
	}
	r.providers[p.IdentifierKey()] = p
}

// Get returns the provider for key; ok is false when none is registered.
func (r *IdentityProviderRegistry) Get(key string) (IdentityProvider, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	p, ok := r.providers[key]
	return p, ok
}

// Keys lists the registered identifier keys.
func (r *IdentityProviderRegistry) Keys() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	return keys
}
