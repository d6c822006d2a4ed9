package filter

import (
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/xregistry-dev/xregistry-server/internal/entity"
)

// Sort orders entities in place by the requested attribute. String values
// compare case-insensitively, numeric values numerically, anything else
// through its string form. Entities missing the attribute sort last and
// ties break by id then name ascending, both regardless of direction, so
// sorting is deterministic and idempotent.
func Sort(entities []entity.Entity, spec SortSpec) {
	if spec.Attribute == "" {
		return
	}

	sort.SliceStable(entities, func(i, j int) bool {
		vi, oki := entities[i].Path(spec.Attribute)
		vj, okj := entities[j].Path(spec.Attribute)
		oki = oki && vi != nil
		okj = okj && vj != nil

		switch {
		case !oki && !okj:
			return tieBreak(entities[i], entities[j])
		case !oki:
			return false
		case !okj:
			return true
		}

		cmp := compareValues(vi, vj)
		if spec.Descending {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return tieBreak(entities[i], entities[j])
	})
}

// compareValues compares two attribute values, numerically when both
// coerce to numbers and case-insensitively as strings otherwise.
func compareValues(a, b any) int {
	na, errA := cast.ToFloat64E(a)
	nb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(
		strings.ToLower(cast.ToString(a)),
		strings.ToLower(cast.ToString(b)),
	)
}

// tieBreak orders by id then name, always ascending.
func tieBreak(a, b entity.Entity) bool {
	if cmp := strings.Compare(stringAttr(a, "id"), stringAttr(b, "id")); cmp != 0 {
		return cmp < 0
	}
	return stringAttr(a, "name") < stringAttr(b, "name")
}

func stringAttr(e entity.Entity, attr string) string {
	v, ok := e.Path(attr)
	if !ok || v == nil {
		return ""
	}
	return strings.ToLower(cast.ToString(v))
}
