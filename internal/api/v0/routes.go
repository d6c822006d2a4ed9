// Package v0 provides the REST API handlers for xRegistry entity access.
package v0

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xregistry-dev/xregistry-server/internal/api/common"
	"github.com/xregistry-dev/xregistry-server/internal/entity"
	"github.com/xregistry-dev/xregistry-server/internal/filter"
	"github.com/xregistry-dev/xregistry-server/internal/service"
)

// Version is the server version reported by the version endpoint.
// Overridden at build time via -ldflags.
var Version = "dev"

// RegistryListResponse represents the registry listing response
type RegistryListResponse struct {
	Registries []string `json:"registries"`
}

// EntityListResponse represents one page of a filtered entity listing
type EntityListResponse struct {
	Entities []entity.Entity `json:"entities"`
	Total    int             `json:"total"`
	Offset   int             `json:"offset"`
	Limit    int             `json:"limit,omitempty"`
	HasMore  bool            `json:"hasMore"`
}

// Routes defines the routes for the entity query API with dependency injection
type Routes struct {
	services map[string]service.RegistryService
	logger   *slog.Logger
}

// NewRoutes creates a new Routes instance over the named registry services
func NewRoutes(services map[string]service.RegistryService, logger *slog.Logger) *Routes {
	if logger == nil {
		logger = slog.Default()
	}
	return &Routes{
		services: services,
		logger:   logger,
	}
}

// Router creates a new router for the entity query API
func Router(services map[string]service.RegistryService, logger *slog.Logger) http.Handler {
	routes := NewRoutes(services, logger)

	r := chi.NewRouter()

	r.Get("/registries", routes.listRegistries)
	r.Route("/registries/{registryName}", func(r chi.Router) {
		r.Get("/entities", routes.listEntities)
		r.Get("/entities/{entityName}", routes.getEntity)
		r.Post("/refresh", routes.refreshRegistry)
	})

	return r
}

// listRegistries handles GET /api/v0/registries
func (rr *Routes) listRegistries(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(rr.services))
	for name := range rr.services {
		names = append(names, name)
	}
	sort.Strings(names)

	common.WriteJSONResponse(w, RegistryListResponse{Registries: names}, http.StatusOK)
}

// listEntities handles GET /api/v0/registries/{registryName}/entities.
//
// Query parameters:
//   - filter: attribute filter expression; repeatable, repeated values are OR'd
//   - sort:   "attribute" or "attribute=asc|desc"
//   - limit:  page size, must be a positive integer
//   - offset: page start, must be a non-negative integer
func (rr *Routes) listEntities(w http.ResponseWriter, r *http.Request) {
	svc, ok := rr.lookupService(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	opts := []service.Option[service.ListEntitiesOptions]{}

	if filters := query["filter"]; len(filters) > 0 {
		opts = append(opts, service.WithFilters(filters...))
	}
	if sortSpec := query.Get("sort"); sortSpec != "" {
		opts = append(opts, service.WithSort(sortSpec))
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			common.WriteErrorResponse(w, "Invalid limit parameter: must be a positive integer", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithLimit(limit))
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			common.WriteErrorResponse(w, "Invalid offset parameter: must be a non-negative integer", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithOffset(offset))
	}

	page, err := svc.ListEntities(r.Context(), opts...)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	if links := filter.PageLinks(r.URL, *page); links != nil {
		w.Header().Set("Link", filter.FormatLinkHeader(links))
	}

	entities := page.Entities
	if entities == nil {
		entities = []entity.Entity{}
	}
	common.WriteJSONResponse(w, EntityListResponse{
		Entities: entities,
		Total:    page.Total,
		Offset:   page.Offset,
		Limit:    page.Limit,
		HasMore:  page.HasMore,
	}, http.StatusOK)
}

// getEntity handles GET /api/v0/registries/{registryName}/entities/{entityName}
func (rr *Routes) getEntity(w http.ResponseWriter, r *http.Request) {
	svc, ok := rr.lookupService(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "entityName")
	e, err := svc.GetEntity(r.Context(), name)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, e, http.StatusOK)
}

// refreshRegistry handles POST /api/v0/registries/{registryName}/refresh
func (rr *Routes) refreshRegistry(w http.ResponseWriter, r *http.Request) {
	svc, ok := rr.lookupService(w, r)
	if !ok {
		return
	}

	if err := svc.Refresh(r.Context()); err != nil {
		rr.logger.Error("Registry refresh failed",
			"registry", chi.URLParam(r, "registryName"),
			"error", err,
		)
		common.WriteErrorResponse(w, "Failed to refresh registry", http.StatusBadGateway)
		return
	}

	common.WriteJSONResponse(w, map[string]string{"status": "refreshed"}, http.StatusOK)
}

func (rr *Routes) lookupService(w http.ResponseWriter, r *http.Request) (service.RegistryService, bool) {
	name := chi.URLParam(r, "registryName")
	svc, ok := rr.services[name]
	if !ok {
		common.WriteErrorResponse(w, "Unknown registry: "+name, http.StatusNotFound)
		return nil, false
	}
	return svc, true
}

func (rr *Routes) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEntityNotFound):
		common.WriteErrorResponse(w, "Entity not found", http.StatusNotFound)
	case errors.Is(err, service.ErrRegistryNotReady):
		common.WriteErrorResponse(w, "Registry not ready", http.StatusServiceUnavailable)
	case errors.Is(err, service.ErrInvalidOptions):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	default:
		rr.logger.Error("Request failed",
			"path", r.URL.Path,
			"error", err,
		)
		common.WriteErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(services map[string]service.RegistryService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(services))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

// readinessHandler reports ready only when every registry service is ready
func readinessHandler(services map[string]service.RegistryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, svc := range services {
			if err := svc.CheckReadiness(r.Context()); err != nil {
				common.WriteErrorResponse(w, "Registry "+name+" not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{
		"version":    Version,
		"go_version": runtime.Version(),
		"platform":   runtime.GOOS + "/" + runtime.GOARCH,
	}, http.StatusOK)
}
