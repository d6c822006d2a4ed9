// Package inmemory provides an in-memory implementation of the
// RegistryService interface backed by an EntityProvider and a
// per-backend filter engine.
package inmemory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xregistry-dev/xregistry-server/internal/entity"
	"github.com/xregistry-dev/xregistry-server/internal/filter"
	"github.com/xregistry-dev/xregistry-server/internal/service"
)

// regSvc implements the RegistryService interface
type regSvc struct {
	mu       sync.RWMutex // Protects lastFetch and loaded
	provider service.EntityProvider
	engine   *filter.Engine
	logger   *slog.Logger

	engineOpts    *filter.Options
	loaded        bool
	lastFetch     time.Time
	lastHash      string
	cacheDuration time.Duration
}

// changeDetector is optionally implemented by providers that can report a
// cheap content hash of their current data, letting an unchanged
// collection skip the re-parse and reindex on refresh.
type changeDetector interface {
	CurrentHash(ctx context.Context) (string, error)
}

var _ service.RegistryService = (*regSvc)(nil)

// Option is a functional option for configuring the regSvc
type Option func(*regSvc)

// WithCacheDuration sets how long fetched entity data is reused before
// the provider is asked again
func WithCacheDuration(duration time.Duration) Option {
	return func(s *regSvc) {
		s.cacheDuration = duration
	}
}

// WithEngineOptions replaces the default filter engine configuration.
// A nil Fetcher or Logger is still defaulted from the provider and the
// service logger.
func WithEngineOptions(opts filter.Options) Option {
	return func(s *regSvc) {
		s.engineOpts = &opts
	}
}

// WithLogger sets the logger used by the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *regSvc) {
		s.logger = logger
	}
}

// New creates a registry service around the given provider. The provider
// doubles as the engine's metadata fetcher unless engine options are
// supplied explicitly.
func New(ctx context.Context, provider service.EntityProvider, opts ...Option) (service.RegistryService, error) {
	if provider == nil {
		return nil, fmt.Errorf("entity provider is required")
	}

	s := &regSvc{
		provider:      provider,
		logger:        slog.Default(),
		cacheDuration: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	engineOpts := filter.Options{}
	if s.engineOpts != nil {
		engineOpts = *s.engineOpts
	}
	if engineOpts.Fetcher == nil {
		engineOpts.Fetcher = fetcherFunc(provider.FetchMetadata)
	}
	if engineOpts.Logger == nil {
		engineOpts.Logger = s.logger
	}
	s.engine = filter.New(engineOpts)

	// Load initial data; failure is tolerated so the service can retry
	// on first use.
	if err := s.load(ctx); err != nil {
		s.logger.Warn("failed to load initial entity data",
			"registry", provider.Name(), "error", err)
	}

	return s, nil
}

// Engine exposes the filter engine, mainly so callers can start the
// result cache sweep.
func (s *regSvc) Engine() *filter.Engine {
	return s.engine
}

// currentHash asks the provider for its content hash when it supports
// change detection. Empty means unknown and always triggers a reload.
func (s *regSvc) currentHash(ctx context.Context) string {
	detector, ok := s.provider.(changeDetector)
	if !ok {
		return ""
	}
	hash, err := detector.CurrentHash(ctx)
	if err != nil {
		return ""
	}
	return hash
}

// fetcherFunc adapts a plain function to the filter.Fetcher interface.
type fetcherFunc func(ctx context.Context, name string) (map[string]any, error)

func (f fetcherFunc) FetchMetadata(ctx context.Context, name string) (map[string]any, error) {
	return f(ctx, name)
}

// load fetches the collection from the provider and publishes a fresh
// index snapshot.
func (s *regSvc) load(ctx context.Context) error {
	hash := s.currentHash(ctx)
	entities, err := s.provider.FetchEntities(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch entities: %w", err)
	}

	s.engine.SetEntities(entities)

	s.mu.Lock()
	s.loaded = true
	s.lastFetch = time.Now()
	s.lastHash = hash
	s.mu.Unlock()

	s.logger.Info("loaded entity data",
		"registry", s.provider.Name(),
		"source", s.provider.Source(),
		"entityCount", len(entities))
	return nil
}

// refreshIfNeeded reloads the collection once the cache duration has
// passed. Stale data keeps serving when the provider fails.
func (s *regSvc) refreshIfNeeded(ctx context.Context) error {
	s.mu.RLock()
	fresh := s.loaded && time.Since(s.lastFetch) <= s.cacheDuration
	hadData := s.loaded
	s.mu.RUnlock()

	if fresh {
		return nil
	}

	// Unchanged content only needs its freshness window extended.
	if hadData {
		s.mu.RLock()
		lastHash := s.lastHash
		s.mu.RUnlock()
		if lastHash != "" && s.currentHash(ctx) == lastHash {
			s.mu.Lock()
			s.lastFetch = time.Now()
			s.mu.Unlock()
			return nil
		}
	}

	if err := s.load(ctx); err != nil {
		s.logger.Warn("failed to refresh entity data", "error", err)
		if !hadData {
			return err
		}
	}
	return nil
}

// CheckReadiness implements RegistryService.CheckReadiness
func (s *regSvc) CheckReadiness(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if loaded {
		return nil
	}
	if err := s.load(ctx); err != nil {
		return fmt.Errorf("%w: %w", service.ErrRegistryNotReady, err)
	}
	return nil
}

// Refresh implements RegistryService.Refresh
func (s *regSvc) Refresh(ctx context.Context) error {
	return s.load(ctx)
}

// ListEntities implements RegistryService.ListEntities
func (s *regSvc) ListEntities(
	ctx context.Context,
	opts ...service.Option[service.ListEntitiesOptions],
) (*filter.Page, error) {
	options := &service.ListEntitiesOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, fmt.Errorf("%w: %w", service.ErrInvalidOptions, err)
		}
	}

	if err := s.refreshIfNeeded(ctx); err != nil {
		return nil, err
	}

	matched, err := s.engine.Evaluate(ctx, options.Filters)
	if err != nil {
		return nil, fmt.Errorf("filter evaluation failed: %w", err)
	}

	filter.Sort(matched, options.Sort)
	page := filter.Paginate(matched, options.Offset, options.Limit)
	return &page, nil
}

// GetEntity implements RegistryService.GetEntity
func (s *regSvc) GetEntity(ctx context.Context, name string) (entity.Entity, error) {
	if err := s.refreshIfNeeded(ctx); err != nil {
		return nil, err
	}

	matches, err := s.engine.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", service.ErrEntityNotFound, name)
	}
	return matches[0], nil
}
