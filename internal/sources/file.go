package sources

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"github.com/xregistry-dev/xregistry-server/internal/config"
	"github.com/xregistry-dev/xregistry-server/internal/entity"
	"github.com/xregistry-dev/xregistry-server/internal/service"
)

// fileProvider serves entity collections from local JSON files
type fileProvider struct {
	name string
	path string
}

var _ service.EntityProvider = (*fileProvider)(nil)

// NewFileProvider creates an entity provider backed by a local file
func NewFileProvider(regCfg *config.RegistryConfig) (service.EntityProvider, error) {
	if err := validateFileConfig(regCfg); err != nil {
		return nil, err
	}
	return &fileProvider{
		name: regCfg.Name,
		path: regCfg.File.Path,
	}, nil
}

func validateFileConfig(regCfg *config.RegistryConfig) error {
	if regCfg == nil {
		return fmt.Errorf("registry configuration cannot be nil")
	}
	if regCfg.File == nil {
		return fmt.Errorf("file configuration is required")
	}
	if regCfg.File.Path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	return nil
}

// FetchEntities reads and parses the entity collection file
func (p *fileProvider) FetchEntities(ctx context.Context) ([]entity.Entity, error) {
	data, _, err := p.readFile(ctx)
	if err != nil {
		return nil, err
	}
	return decodeCollection(data)
}

// FetchMetadata returns the full record of the named entity. File
// collections carry all attributes inline, so this is a lookup over
// the parsed collection.
func (p *fileProvider) FetchMetadata(ctx context.Context, name string) (map[string]any, error) {
	entities, err := p.FetchEntities(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if strings.EqualFold(entityName(e), name) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("entity not found in %s: %s", p.path, name)
}

// Source identifies where this provider's data comes from
func (p *fileProvider) Source() string {
	return "file:" + p.path
}

// Name returns the registry name this provider serves
func (p *fileProvider) Name() string {
	return p.name
}

// CurrentHash returns the sha256 of the file contents, for change
// detection without a full parse.
func (p *fileProvider) CurrentHash(ctx context.Context) (string, error) {
	_, hash, err := p.readFile(ctx)
	return hash, err
}

func (p *fileProvider) readFile(_ context.Context) ([]byte, string, error) {
	//nolint:gosec // File path comes from user configuration, this is expected behavior
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file not found: %s", p.path)
		}
		return nil, "", fmt.Errorf("failed to read file %s: %w", p.path, err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	return data, hash, nil
}
