// Package sources provides entity providers for the supported registry
// data sources. Each provider loads an entity collection and serves
// per-entity metadata for filter enrichment.
//
// Supported source types:
//   - file: entity collections stored in local JSON files
//   - api: entity collections served by a remote xRegistry endpoint
package sources
