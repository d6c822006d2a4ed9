package v0_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v0 "github.com/xregistry-dev/xregistry-server/internal/api/v0"
	"github.com/xregistry-dev/xregistry-server/internal/entity"
	"github.com/xregistry-dev/xregistry-server/internal/filter"
	"github.com/xregistry-dev/xregistry-server/internal/service"
	"github.com/xregistry-dev/xregistry-server/internal/service/mocks"
)

func newRouter(svc service.RegistryService) http.Handler {
	return v0.Router(map[string]service.RegistryService{"default": svc}, nil)
}

func doRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestListRegistries(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	handler := v0.Router(map[string]service.RegistryService{
		"zeta":  mocks.NewMockRegistryService(ctrl),
		"alpha": mocks.NewMockRegistryService(ctrl),
	}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/registries")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp v0.RegistryListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"alpha", "zeta"}, resp.Registries)
}

func TestListEntities(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockRegistryService(ctrl)
	svc.EXPECT().
		ListEntities(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&filter.Page{
			Entities: []entity.Entity{{"name": "alpha"}, {"name": "beta"}},
			Total:    5,
			Offset:   2,
			Limit:    2,
			HasMore:  true,
		}, nil)

	rec := doRequest(t, newRouter(svc), http.MethodGet,
		"/registries/default/entities?filter=name%3D*a*&sort=name&limit=2&offset=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp v0.EntityListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entities, 2)
	assert.Equal(t, "alpha", resp.Entities[0]["name"])
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 2, resp.Offset)
	assert.True(t, resp.HasMore)

	link := rec.Header().Get("Link")
	assert.Contains(t, link, `rel="next"`)
	assert.Contains(t, link, "count=5")
	assert.Contains(t, link, "offset=4")
}

func TestListEntitiesNoOptions(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockRegistryService(ctrl)
	svc.EXPECT().
		ListEntities(gomock.Any()).
		Return(&filter.Page{Entities: nil, Total: 0}, nil)

	rec := doRequest(t, newRouter(svc), http.MethodGet, "/registries/default/entities")
	require.Equal(t, http.StatusOK, rec.Code)

	// Entities serializes as an empty array, never null
	assert.Contains(t, rec.Body.String(), `"entities":[]`)
	assert.Empty(t, rec.Header().Get("Link"))
}

func TestListEntitiesRepeatedFilters(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockRegistryService(ctrl)

	var gotFilters []string
	svc.EXPECT().
		ListEntities(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts ...service.Option[service.ListEntitiesOptions]) (*filter.Page, error) {
			options := &service.ListEntitiesOptions{}
			for _, opt := range opts {
				require.NoError(t, opt(options))
			}
			gotFilters = options.Filters
			return &filter.Page{}, nil
		})

	rec := doRequest(t, newRouter(svc), http.MethodGet,
		"/registries/default/entities?filter=name%3Dalpha&filter=name%3Dbeta")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"name=alpha", "name=beta"}, gotFilters)
}

func TestListEntitiesBadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
	}{
		{name: "limit not a number", target: "/registries/default/entities?limit=abc"},
		{name: "limit zero", target: "/registries/default/entities?limit=0"},
		{name: "negative offset", target: "/registries/default/entities?offset=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			svc := mocks.NewMockRegistryService(ctrl) // no calls expected

			rec := doRequest(t, newRouter(svc), http.MethodGet, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListEntitiesServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "not ready",
			err:      fmt.Errorf("%w: load pending", service.ErrRegistryNotReady),
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "invalid options",
			err:      fmt.Errorf("%w: bad sort", service.ErrInvalidOptions),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "internal",
			err:      errors.New("backend exploded"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			svc := mocks.NewMockRegistryService(ctrl)
			svc.EXPECT().ListEntities(gomock.Any()).Return(nil, tt.err)

			rec := doRequest(t, newRouter(svc), http.MethodGet, "/registries/default/entities")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestGetEntity(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockRegistryService(ctrl)
	svc.EXPECT().
		GetEntity(gomock.Any(), "alpha").
		Return(entity.Entity{"name": "alpha", "license": "MIT"}, nil)

	rec := doRequest(t, newRouter(svc), http.MethodGet, "/registries/default/entities/alpha")
	require.Equal(t, http.StatusOK, rec.Code)

	var e entity.Entity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "MIT", e["license"])
}

func TestGetEntityNotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockRegistryService(ctrl)
	svc.EXPECT().
		GetEntity(gomock.Any(), "ghost").
		Return(nil, fmt.Errorf("%w: ghost", service.ErrEntityNotFound))

	rec := doRequest(t, newRouter(svc), http.MethodGet, "/registries/default/entities/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRegistry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockRegistryService(ctrl) // no calls expected

	rec := doRequest(t, newRouter(svc), http.MethodGet, "/registries/nope/entities")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown registry")
}

func TestRefreshRegistry(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mocks.NewMockRegistryService(ctrl)
		svc.EXPECT().Refresh(gomock.Any()).Return(nil)

		rec := doRequest(t, newRouter(svc), http.MethodPost, "/registries/default/refresh")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mocks.NewMockRegistryService(ctrl)
		svc.EXPECT().Refresh(gomock.Any()).Return(errors.New("fetch failed"))

		rec := doRequest(t, newRouter(svc), http.MethodPost, "/registries/default/refresh")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHealthRouter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	ready := mocks.NewMockRegistryService(ctrl)
	ready.EXPECT().CheckReadiness(gomock.Any()).Return(nil).AnyTimes()

	handler := v0.HealthRouter(map[string]service.RegistryService{"default": ready})

	rec := doRequest(t, handler, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = doRequest(t, handler, http.MethodGet, "/readiness")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_version")
}

func TestReadinessNotReady(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	notReady := mocks.NewMockRegistryService(ctrl)
	notReady.EXPECT().
		CheckReadiness(gomock.Any()).
		Return(fmt.Errorf("%w: load pending", service.ErrRegistryNotReady))

	handler := v0.HealthRouter(map[string]service.RegistryService{"default": notReady})

	rec := doRequest(t, handler, http.MethodGet, "/readiness")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not ready")
}
