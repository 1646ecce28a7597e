package providers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrProviderNotFound is returned when no provider is registered under a name
var ErrProviderNotFound = errors.New("provider not found")

// Provider looks up cover artwork for a track on one upstream service.
//
// FetchArtwork receives an artist and title that are already trimmed and non-empty.
// It returns a non-empty URL when err is nil; failures are a *ProviderError wrapping
// one of the Err* sentinels so callers can tell them apart with Classify.
type Provider interface {
	Name() string
	FetchArtwork(ctx context.Context, artist, title string) (string, error)
}

// Registry maps provider names to providers. Names are case-insensitive.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

var global = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// GetRegistry returns the process-wide registry
func GetRegistry() *Registry {
	return global
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds p, replacing any provider with the same name
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[normalizeName(p.Name())] = p
}

// Get returns the provider registered under name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := normalizeName(name)
	if p, ok := r.providers[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, key)
}

// List returns the registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

func Register(p Provider) { global.Register(p) }

func Get(name string) (Provider, error) { return global.Get(name) }

func List() []string { return global.List() }

func Has(name string) bool { return global.Has(name) }
