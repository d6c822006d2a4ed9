package sources

import (
	"fmt"

	"github.com/xregistry-dev/xregistry-server/internal/config"
	"github.com/xregistry-dev/xregistry-server/internal/service"
)

// ProviderFactory creates entity providers from registry configurations
type ProviderFactory interface {
	// CreateProvider creates a provider for the given registry configuration
	CreateProvider(regCfg *config.RegistryConfig) (service.EntityProvider, error)
}

// defaultProviderFactory is the default implementation of ProviderFactory
type defaultProviderFactory struct{}

var _ ProviderFactory = (*defaultProviderFactory)(nil)

// NewProviderFactory creates a new provider factory
func NewProviderFactory() ProviderFactory {
	return &defaultProviderFactory{}
}

// CreateProvider creates a provider for the given registry configuration
func (*defaultProviderFactory) CreateProvider(regCfg *config.RegistryConfig) (service.EntityProvider, error) {
	if regCfg == nil {
		return nil, fmt.Errorf("registry configuration cannot be nil")
	}

	switch regCfg.Type() {
	case config.SourceTypeFile:
		return NewFileProvider(regCfg)
	case config.SourceTypeAPI:
		return NewAPIProvider(regCfg, nil)
	default:
		return nil, fmt.Errorf("registry %s: unsupported source type", regCfg.Name)
	}
}
