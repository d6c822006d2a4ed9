package sources

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xregistry-dev/xregistry-server/internal/entity"
)

// collectionDocument is the wire format of an entity collection. A bare
// JSON array of entities is accepted as well.
type collectionDocument struct {
	Entities []entity.Entity `json:"entities"`
}

// decodeCollection parses an entity collection from JSON. Both the
// enveloped form {"entities": [...]} and a bare array are accepted.
func decodeCollection(data []byte) ([]entity.Entity, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if strings.HasPrefix(trimmed, "[") {
		var entities []entity.Entity
		if err := json.Unmarshal(data, &entities); err != nil {
			return nil, fmt.Errorf("failed to parse entity array: %w", err)
		}
		return entities, nil
	}

	var doc collectionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse entity collection: %w", err)
	}
	if doc.Entities == nil {
		return nil, fmt.Errorf("entity collection is missing the entities field")
	}
	return doc.Entities, nil
}

// entityName extracts the name attribute of an entity, or "" when absent.
func entityName(e entity.Entity) string {
	v, ok := e.Path("name")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
