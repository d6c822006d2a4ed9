// Package service provides the business logic for the xRegistry query API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/xregistry-dev/xregistry-server/internal/entity"
	"github.com/xregistry-dev/xregistry-server/internal/filter"
)

var (
	// ErrEntityNotFound is returned when an entity is not found
	ErrEntityNotFound = errors.New("entity not found")
	// ErrRegistryNotReady is returned when the backing entity collection
	// has not been loaded yet
	ErrRegistryNotReady = errors.New("registry data not available")
	// ErrInvalidOptions is returned when a request option fails validation
	ErrInvalidOptions = errors.New("invalid options")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go RegistryService,EntityProvider

// RegistryService defines the query operations over one registry
// backend's entity collection.
type RegistryService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// ListEntities returns a filtered, sorted, paginated page of entities
	ListEntities(ctx context.Context, opts ...Option[ListEntitiesOptions]) (*filter.Page, error)

	// GetEntity returns one entity by its exact, case-insensitive name
	GetEntity(ctx context.Context, name string) (entity.Entity, error)

	// Refresh forces a provider reload and index rebuild
	Refresh(ctx context.Context) error
}

// EntityProvider abstracts the source of one backend's entity collection
// and its per-entity metadata. Implementations live in internal/sources.
type EntityProvider interface {
	// FetchEntities fetches the current entity collection
	FetchEntities(ctx context.Context) ([]entity.Entity, error)

	// FetchMetadata fetches registry-specific metadata for one entity,
	// used to evaluate non-name filter terms
	FetchMetadata(ctx context.Context, name string) (map[string]any, error)

	// Source returns a descriptive string about where the data comes
	// from, for instance "file:/path/to/entities.json"
	Source() string

	// Name returns the registry name this provider serves
	Name() string
}

// Option is a function that sets an option for the ListEntities operation
type Option[T ListEntitiesOptions] func(*T) error

// ListEntitiesOptions is the options for the ListEntities operation
type ListEntitiesOptions struct {
	Filters []string
	Sort    filter.SortSpec
	Limit   int
	Offset  int
}

// WithFilters sets the filter expressions for the ListEntities operation.
// Each expression is one AND group; groups are OR-ed together.
func WithFilters(filters ...string) Option[ListEntitiesOptions] {
	return func(o *ListEntitiesOptions) error {
		if len(filters) == 0 {
			return fmt.Errorf("at least one filter expression is required")
		}
		o.Filters = append(o.Filters, filters...)
		return nil
	}
}

// WithSort sets the sort specification for the ListEntities operation
func WithSort(raw string) Option[ListEntitiesOptions] {
	return func(o *ListEntitiesOptions) error {
		if raw == "" {
			return fmt.Errorf("invalid sort: %s", raw)
		}
		o.Sort = filter.ParseSort(raw)
		return nil
	}
}

// WithLimit sets the page size for the ListEntities operation
func WithLimit(limit int) Option[ListEntitiesOptions] {
	return func(o *ListEntitiesOptions) error {
		if limit <= 0 {
			return fmt.Errorf("invalid limit: %d", limit)
		}
		o.Limit = limit
		return nil
	}
}

// WithOffset sets the page offset for the ListEntities operation
func WithOffset(offset int) Option[ListEntitiesOptions] {
	return func(o *ListEntitiesOptions) error {
		if offset < 0 {
			return fmt.Errorf("invalid offset: %d", offset)
		}
		o.Offset = offset
		return nil
	}
}
