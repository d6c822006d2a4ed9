package filter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/xregistry-dev/xregistry-server/internal/entity"
)

const (
	// DefaultNameAttribute is the attribute whose terms take the indexed
	// fast path.
	DefaultNameAttribute = "name"

	// DefaultMaxMetadataFetches caps Phase-2 enrichment per evaluation.
	DefaultMaxMetadataFetches = 50

	// DefaultFetchConcurrency issues Phase-2 fetches one at a time.
	DefaultFetchConcurrency = 1
)

// DefaultIndexedAttributes is the attribute allow-list indexed alongside
// names. Equality refinement terms on these attributes are answered from
// the index instead of fetching metadata, but only when the snapshot
// entities actually carry them.
var DefaultIndexedAttributes = []string{"description", "author", "license", "version"}

// ErrIndexNotBuilt is returned when an engine is queried before any entity
// collection has been published to it.
var ErrIndexNotBuilt = errors.New("filter: index not built")

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks -source=engine.go Fetcher

// Fetcher retrieves registry-specific metadata for one entity name. A
// failed fetch drops only that candidate and never aborts an evaluation.
type Fetcher interface {
	FetchMetadata(ctx context.Context, name string) (map[string]any, error)
}

// Options configure an Engine. Zero values select the defaults.
type Options struct {
	// NameAttribute is the attribute treated as the entity name.
	NameAttribute string

	// NameOf extracts the comparison key for name terms. Defaults to a
	// string lookup of NameAttribute.
	NameOf NameOf

	// Fetcher supplies Phase-2 metadata. When nil, filters with non-name
	// terms degrade to their name-only result with a warning.
	Fetcher Fetcher

	// MaxMetadataFetches caps metadata fetches per evaluation.
	MaxMetadataFetches int

	// FetchConcurrency bounds parallel in-flight fetches. Never more
	// than MaxMetadataFetches fetches are issued in total.
	FetchConcurrency int

	// IndexedAttributes is the attribute index allow-list.
	IndexedAttributes []string

	CacheCapacity int
	CacheMaxAge   time.Duration
	CacheDir      string

	Logger *slog.Logger
}

// Engine implements two-step attribute filtering over one registry
// backend's entity collection. Each backend owns its own engine, so index
// rebuilds and caches never cross-contaminate between registries.
type Engine struct {
	opts       Options
	snap       atomic.Pointer[snapshot]
	generation atomic.Uint64
	cache      *ResultCache
	logger     *slog.Logger
}

// New creates an engine. Entities must be published with SetEntities
// before the first evaluation.
func New(opts Options) *Engine {
	if opts.NameAttribute == "" {
		opts.NameAttribute = DefaultNameAttribute
	}
	if opts.NameOf == nil {
		attr := opts.NameAttribute
		opts.NameOf = func(e entity.Entity) string {
			v, ok := e.Path(attr)
			if !ok || v == nil {
				return ""
			}
			s, _ := v.(string)
			return s
		}
	}
	if opts.MaxMetadataFetches <= 0 {
		opts.MaxMetadataFetches = DefaultMaxMetadataFetches
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = DefaultFetchConcurrency
	}
	if opts.IndexedAttributes == nil {
		opts.IndexedAttributes = DefaultIndexedAttributes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Engine{
		opts:   opts,
		cache:  NewResultCache(opts.CacheCapacity, opts.CacheMaxAge, opts.CacheDir, opts.Logger),
		logger: opts.Logger,
	}
}

// SetEntities replaces the backing collection, rebuilds all indexes and
// bumps the generation. The new snapshot is published atomically; prior
// cache entries are invalidated by the generation embedded in their keys.
func (e *Engine) SetEntities(entities []entity.Entity) {
	generation := e.generation.Add(1)
	start := time.Now()
	snap := buildSnapshot(entities, e.opts.NameOf, e.opts.IndexedAttributes, generation)
	e.snap.Store(snap)
	e.logger.Debug("rebuilt filter index",
		"entities", len(entities),
		"distinctNames", len(snap.names),
		"generation", generation,
		"elapsed", time.Since(start))
}

// Generation returns the current index generation, zero before the first
// SetEntities call.
func (e *Engine) Generation() uint64 {
	return e.generation.Load()
}

// Cache exposes the engine's result cache, mainly so callers can start
// the background sweep.
func (e *Engine) Cache() *ResultCache {
	return e.cache
}

// Entities returns the current collection snapshot in its original order.
func (e *Engine) Entities() ([]entity.Entity, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrIndexNotBuilt
	}
	return append([]entity.Entity(nil), snap.entities...), nil
}

// Lookup returns the entities whose name equals name case-insensitively.
func (e *Engine) Lookup(name string) ([]entity.Entity, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrIndexNotBuilt
	}
	return snap.collect(snap.lookupName(name)), nil
}

// Evaluate runs the filter query language over the current snapshot. Each
// raw filter string is one AND group; groups are OR-ed together. The
// result preserves the collection order of the snapshot.
func (e *Engine) Evaluate(ctx context.Context, rawFilters []string) ([]entity.Entity, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrIndexNotBuilt
	}
	if len(rawFilters) == 0 {
		return append([]entity.Entity(nil), snap.entities...), nil
	}

	groups := make([]Group, 0, len(rawFilters))
	nameOnly := true
	for _, raw := range rawFilters {
		group := Parse(raw)
		groups = append(groups, group)
		if _, other := group.Partition(e.opts.NameAttribute); len(other) > 0 {
			nameOnly = false
		}
	}

	// Only the name-only branch is memoized: enriched results depend on
	// externally fetched metadata and would go stale unnoticed.
	var cacheKey string
	if nameOnly {
		cacheKey = CacheKey(rawFilters, snap.generation)
		if positions, ok := e.cache.Get(cacheKey); ok {
			e.logger.Debug("filter cache hit", "key", cacheKey)
			bm := roaring.New()
			bm.AddMany(positions)
			return snap.collect(bm), nil
		}
	}

	start := time.Now()
	result := roaring.New()
	for _, group := range groups {
		matched, err := e.evaluateGroup(ctx, snap, group)
		if err != nil {
			return nil, err
		}
		result.Or(matched)
	}
	e.logger.Debug("filter evaluation completed",
		"groups", len(groups),
		"matches", result.GetCardinality(),
		"elapsed", time.Since(start))

	if nameOnly {
		e.cache.Put(cacheKey, result.ToArray())
	}
	return snap.collect(result), nil
}

// evaluateGroup applies one AND group: Phase 1 narrows by name through the
// index, index-resolvable equality terms prune further, and Phase 2
// enriches the survivors with fetched metadata for the remaining terms.
func (e *Engine) evaluateGroup(ctx context.Context, snap *snapshot, group Group) (*roaring.Bitmap, error) {
	if len(group) == 0 {
		return snap.universe(), nil
	}

	nameTerms, otherTerms := group.Partition(e.opts.NameAttribute)

	// Non-name terms require at least one name term; without one the
	// group matches nothing and no fetches are attempted.
	if len(otherTerms) > 0 && len(nameTerms) == 0 {
		e.logger.Debug("filter group has non-name terms but no name term; matching nothing")
		return roaring.New(), nil
	}

	candidates := e.phase1(snap, nameTerms)

	remaining := make(Group, 0, len(otherTerms))
	for _, t := range otherTerms {
		if snap.attributeIndexable(t) {
			candidates.And(snap.lookupAttribute(t.Attribute, t.Value))
		} else {
			remaining = append(remaining, t)
		}
	}
	if len(remaining) == 0 {
		return candidates, nil
	}

	return e.phase2(ctx, snap, candidates, remaining)
}

// phase1 resolves the name terms against the name index. Exact equality is
// an O(1) lookup, wildcards scan the distinct names rather than the whole
// collection, and negations subtract their matches from the universe.
// Anything more complex falls back to a comparator scan.
func (e *Engine) phase1(snap *snapshot, nameTerms Group) *roaring.Bitmap {
	if len(nameTerms) == 0 {
		return snap.universe()
	}
	if len(nameTerms) == 1 {
		t := nameTerms[0]
		if t.Value != NullLiteral {
			switch {
			case t.Operator == OpEquals:
				return equalityMatches(snap, t.Value)
			case t.IsNegation():
				// An uncompilable pattern matches nothing here, so the
				// negation permissively keeps the whole universe.
				u := snap.universe()
				u.AndNot(equalityMatches(snap, t.Value))
				return u
			}
		}
	}
	return e.comparatorScan(snap, nameTerms)
}

// equalityMatches resolves the "=" form of a name term against the index.
// A pattern that fails to compile matches nothing.
func equalityMatches(snap *snapshot, value string) *roaring.Bitmap {
	if !strings.Contains(value, Wildcard) {
		return snap.lookupName(value)
	}
	re, err := compileWildcard(value)
	if err != nil {
		return roaring.New()
	}
	return scanDistinctNames(snap, re.MatchString)
}

// scanDistinctNames unions the postings of every distinct index name the
// predicate accepts.
func scanDistinctNames(snap *snapshot, match func(string) bool) *roaring.Bitmap {
	result := roaring.New()
	for name, postings := range snap.names {
		if match(name) {
			result.Or(postings)
		}
	}
	return result
}

// comparatorScan is the slow path: every entity's name is run through the
// comparator for every name term.
func (e *Engine) comparatorScan(snap *snapshot, nameTerms Group) *roaring.Bitmap {
	result := roaring.New()
	for i, ent := range snap.entities {
		name := e.opts.NameOf(ent)
		matched := true
		for _, t := range nameTerms {
			if !Compare(name, name != "", t.Value, t.Operator) {
				matched = false
				break
			}
		}
		if matched {
			result.Add(uint32(i))
		}
	}
	return result
}

// phase2 enriches up to MaxMetadataFetches candidates with fetched
// metadata and keeps those satisfying every remaining term. Without a
// fetcher the unfiltered Phase-1 set is returned; that degraded mode hands
// callers a broader result than their filter asked for, by contract.
func (e *Engine) phase2(ctx context.Context, snap *snapshot, candidates *roaring.Bitmap, terms Group) (*roaring.Bitmap, error) {
	if e.opts.Fetcher == nil {
		e.logger.Warn("no metadata fetcher configured; returning unfiltered name matches",
			"unappliedTerms", len(terms))
		return candidates, nil
	}

	positions := candidates.ToArray()
	if len(positions) > e.opts.MaxMetadataFetches {
		e.logger.Warn("truncating metadata enrichment candidates",
			"candidates", len(positions),
			"cap", e.opts.MaxMetadataFetches)
		positions = positions[:e.opts.MaxMetadataFetches]
	}

	start := time.Now()
	keep := make([]bool, len(positions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.FetchConcurrency)
	for i, pos := range positions {
		g.Go(func() error {
			ent := snap.entities[pos]
			name := e.opts.NameOf(ent)
			metadata, err := e.opts.Fetcher.FetchMetadata(gctx, name)
			if err != nil {
				e.logger.Warn("metadata fetch failed; dropping candidate",
					"name", name, "error", err)
				return nil
			}
			keep[i] = matchesAll(ent.Merge(metadata), terms)
			return nil
		})
	}
	// Workers never return errors; fetch failures only drop candidates.
	_ = g.Wait()

	result := roaring.New()
	for i, kept := range keep {
		if kept {
			result.Add(positions[i])
		}
	}
	e.logger.Debug("metadata enrichment completed",
		"fetched", len(positions),
		"matched", result.GetCardinality(),
		"elapsed", time.Since(start))
	return result, nil
}

// matchesAll evaluates every term against the enriched entity with AND
// semantics.
func matchesAll(ent entity.Entity, terms Group) bool {
	for _, t := range terms {
		v, ok := ent.Path(t.Attribute)
		if !Compare(v, ok, t.Value, t.Operator) {
			return false
		}
	}
	return true
}
