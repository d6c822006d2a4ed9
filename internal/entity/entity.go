// Package entity defines the generic record type served by registry backends.
package entity

import "strings"

// Entity is one filterable record exposed by a registry backend, for
// instance a package or an MCP server. Values may nest arbitrarily; nested
// attributes are addressed with dot paths such as "labels.stage".
type Entity map[string]any

// Path resolves a dot-separated attribute path against the entity. The
// boolean is false when any path segment is missing or a non-map value is
// traversed before the final segment.
func (e Entity) Path(path string) (any, bool) {
	if e == nil || path == "" {
		return nil, false
	}

	var current any = map[string]any(e)
	for _, segment := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Clone returns a copy of the entity. Top-level keys are copied; nested
// values are shared with the original.
func (e Entity) Clone() Entity {
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Merge returns a copy of the entity with the given metadata layered on
// top. The receiver is never mutated; enrichment always works on a copy.
func (e Entity) Merge(metadata map[string]any) Entity {
	out := e.Clone()
	for k, v := range metadata {
		out[k] = v
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Entity:
		return map[string]any(m), true
	default:
		return nil, false
	}
}
