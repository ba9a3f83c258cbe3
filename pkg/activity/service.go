package activity

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/iandesj/aperture/pkg/catalog"
)

// Provider fetches activity metrics from one source-control host.
type Provider interface {
	// Kind identifies which imported components this provider serves.
	Kind() catalog.SourceKind
	// RepositoryActivity fetches metrics for an "owner/name" repository.
	RepositoryActivity(ctx context.Context, repository string) (*Metrics, error)
}

// ImportIndex resolves a component name to its import provenance.
// Implemented by the imported-entities overlay store.
type ImportIndex interface {
	Find(name string) *catalog.ImportedComponent
}

// Service answers "how active is this component's repository" by combining
// import provenance, the metrics cache, and the configured providers.
//
// Metrics are advisory: every failure path returns nil rather than an
// error, with a warning logged. Locally defined components have no
// repository and always resolve to nil.
type Service struct {
	imports   ImportIndex
	cache     *Cache
	providers map[catalog.SourceKind]Provider
	logger    *log.Logger
}

// NewService wires a metrics service. Pass nil for logger to use
// log.Default().
func NewService(imports ImportIndex, cache *Cache, providers []Provider, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	byKind := make(map[catalog.SourceKind]Provider, len(providers))
	for _, p := range providers {
		byKind[p.Kind()] = p
	}
	return &Service{imports: imports, cache: cache, providers: byKind, logger: logger}
}

// ComponentMetrics returns activity metrics for the named component, or
// nil when the component is local, its provider is not configured, or the
// fetch failed.
func (s *Service) ComponentMetrics(ctx context.Context, name string) *Metrics {
	ic := s.imports.Find(name)
	if ic == nil {
		return nil
	}

	key := ic.Key()
	if cached := s.cache.Get(key); cached != nil {
		return cached
	}

	provider, ok := s.providers[ic.Source.Type]
	if !ok {
		s.logger.Debug("no activity provider configured", "component", name, "provider", ic.Source.Type)
		return nil
	}

	metrics, err := provider.RepositoryActivity(ctx, ic.Source.Repository)
	if err != nil {
		s.logger.Warn("activity fetch failed",
			"component", name,
			"repository", ic.Source.Repository,
			"provider", ic.Source.Type,
			"err", err)
		return nil
	}
	if metrics == nil {
		return nil
	}

	metrics.Source = ic.Source.Type
	s.cache.Put(key, *metrics)
	return metrics
}
