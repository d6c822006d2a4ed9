package filter

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/spf13/cast"

	"github.com/xregistry-dev/xregistry-server/internal/entity"
)

// NameOf extracts the comparison key used for all name-term evaluation.
type NameOf func(entity.Entity) string

// snapshot is one immutable generation of the entity collection together
// with its indexes. Rebuilds construct a fresh snapshot off to the side
// and publish it with a single atomic pointer swap, so concurrent readers
// always observe either the old or the new index, never a partial one.
type snapshot struct {
	entities []entity.Entity

	// names maps each lower-cased name to the positions sharing it.
	names map[string]*roaring.Bitmap

	// attributes holds posting lists for the allow-listed attributes,
	// keyed attribute -> lower-cased value -> positions. Used to resolve
	// equality refinement terms without fetching metadata.
	attributes map[string]map[string]*roaring.Bitmap

	generation uint64
}

// buildSnapshot indexes the collection in a single O(n) pass.
func buildSnapshot(entities []entity.Entity, nameOf NameOf, indexedAttributes []string, generation uint64) *snapshot {
	s := &snapshot{
		entities:   entities,
		names:      make(map[string]*roaring.Bitmap),
		attributes: make(map[string]map[string]*roaring.Bitmap, len(indexedAttributes)),
		generation: generation,
	}
	for _, attr := range indexedAttributes {
		s.attributes[attr] = make(map[string]*roaring.Bitmap)
	}

	for i, e := range entities {
		pos := uint32(i)

		name := strings.ToLower(nameOf(e))
		postings := s.names[name]
		if postings == nil {
			postings = roaring.New()
			s.names[name] = postings
		}
		postings.Add(pos)

		for _, attr := range indexedAttributes {
			v, ok := e.Path(attr)
			if !ok || v == nil {
				continue
			}
			value := strings.ToLower(cast.ToString(v))
			valuePostings := s.attributes[attr][value]
			if valuePostings == nil {
				valuePostings = roaring.New()
				s.attributes[attr][value] = valuePostings
			}
			valuePostings.Add(pos)
		}
	}
	return s
}

// universe returns a bitmap covering every position in the snapshot.
func (s *snapshot) universe() *roaring.Bitmap {
	bm := roaring.New()
	if len(s.entities) > 0 {
		bm.AddRange(0, uint64(len(s.entities)))
	}
	return bm
}

// lookupName returns the postings for an exact, case-insensitive name.
func (s *snapshot) lookupName(name string) *roaring.Bitmap {
	if postings, ok := s.names[strings.ToLower(name)]; ok {
		return postings.Clone()
	}
	return roaring.New()
}

// attributeIndexable reports whether an equality term on attr with the
// given value can be answered from the attribute indexes. An allow-listed
// attribute that no snapshot entity carries is only reachable through
// fetched metadata, so its terms fall through to enrichment instead of
// intersecting with an empty posting map.
func (s *snapshot) attributeIndexable(t Term) bool {
	if t.Operator != OpEquals || t.Value == NullLiteral || strings.Contains(t.Value, Wildcard) {
		return false
	}
	return len(s.attributes[t.Attribute]) > 0
}

// lookupAttribute returns the postings for an exact attribute value.
func (s *snapshot) lookupAttribute(attr, value string) *roaring.Bitmap {
	if postings, ok := s.attributes[attr][strings.ToLower(value)]; ok {
		return postings.Clone()
	}
	return roaring.New()
}

// collect materializes entities for the given positions, preserving their
// relative collection order.
func (s *snapshot) collect(positions *roaring.Bitmap) []entity.Entity {
	out := make([]entity.Entity, 0, positions.GetCardinality())
	it := positions.Iterator()
	for it.HasNext() {
		out = append(out, s.entities[it.Next()])
	}
	return out
}
