package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/xregistry-dev/xregistry-server/internal/config"
	"github.com/xregistry-dev/xregistry-server/internal/entity"
	"github.com/xregistry-dev/xregistry-server/internal/httpclient"
	"github.com/xregistry-dev/xregistry-server/internal/service"
)

// apiProvider serves entity collections from a remote xRegistry endpoint
type apiProvider struct {
	name     string
	endpoint string
	client   httpclient.Client
}

var _ service.EntityProvider = (*apiProvider)(nil)

// NewAPIProvider creates an entity provider backed by a remote endpoint.
// The provider issues GET {endpoint}/entities for the collection and
// GET {endpoint}/entities/{name} for per-entity metadata.
func NewAPIProvider(regCfg *config.RegistryConfig, client httpclient.Client) (service.EntityProvider, error) {
	if err := validateAPIConfig(regCfg); err != nil {
		return nil, err
	}
	if client == nil {
		timeout := httpclient.DefaultTimeout
		if t := regCfg.API.GetTimeout(); t > 0 {
			timeout = t
		}
		client = httpclient.NewDefaultClient(timeout)
	}
	return &apiProvider{
		name:     regCfg.Name,
		endpoint: strings.TrimRight(regCfg.API.Endpoint, "/"),
		client:   client,
	}, nil
}

func validateAPIConfig(regCfg *config.RegistryConfig) error {
	if regCfg == nil {
		return fmt.Errorf("registry configuration cannot be nil")
	}
	if regCfg.API == nil {
		return fmt.Errorf("api configuration is required")
	}
	if regCfg.API.Endpoint == "" {
		return fmt.Errorf("api endpoint cannot be empty")
	}
	return nil
}

// FetchEntities retrieves the entity collection from the remote endpoint
func (p *apiProvider) FetchEntities(ctx context.Context) ([]entity.Entity, error) {
	data, err := p.client.Get(ctx, p.endpoint+"/entities")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entities from %s: %w", p.endpoint, err)
	}
	return decodeCollection(data)
}

// FetchMetadata retrieves the full record of a single entity
func (p *apiProvider) FetchMetadata(ctx context.Context, name string) (map[string]any, error) {
	data, err := p.client.Get(ctx, p.endpoint+"/entities/"+url.PathEscape(name))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w", name, err)
	}

	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", name, err)
	}
	return metadata, nil
}

// Source identifies where this provider's data comes from
func (p *apiProvider) Source() string {
	return p.endpoint
}

// Name returns the registry name this provider serves
func (p *apiProvider) Name() string {
	return p.name
}
