package scraper

import (
	"fmt"

	"omnisearch/internal/catalog"
)

// Registry is the ordered table of sites a search fans out to. It holds
// exactly one site per catalog key.
type Registry struct {
	sites []Site
	byKey map[catalog.SourceKey]Site
}

// NewRegistry builds a registry from sites, in the given order. It fails
// unless every catalog key is covered exactly once.
func NewRegistry(sites ...Site) (*Registry, error) {
	byKey := make(map[catalog.SourceKey]Site, len(sites))
	for _, s := range sites {
		if s == nil {
			return nil, fmt.Errorf("site must not be nil")
		}
		k := s.Key()
		if !k.Valid() {
			return nil, fmt.Errorf("unknown source key: %q", k)
		}
		if _, ok := byKey[k]; ok {
			return nil, fmt.Errorf("duplicate site for source %q", k)
		}
		if err := s.Rule().Validate(); err != nil {
			return nil, fmt.Errorf("site %q: %w", k, err)
		}
		byKey[k] = s
	}
	for _, k := range catalog.Keys() {
		if _, ok := byKey[k]; !ok {
			return nil, fmt.Errorf("no site registered for source %q", k)
		}
	}
	out := make([]Site, len(sites))
	copy(out, sites)
	return &Registry{sites: out, byKey: byKey}, nil
}

// Sites returns the registered sites in registration order.
func (r *Registry) Sites() []Site {
	out := make([]Site, len(r.sites))
	copy(out, r.sites)
	return out
}

// Get returns the site for k.
func (r *Registry) Get(k catalog.SourceKey) (Site, bool) {
	s, ok := r.byKey[k]
	return s, ok
}
