package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xregistry-dev/xregistry-server/internal/entity"
)

func entityNames(entities []entity.Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		v, _ := e.Path("name")
		names[i], _ = v.(string)
	}
	return names
}

func TestSortAscendingAndDescending(t *testing.T) {
	t.Parallel()

	entities := []entity.Entity{
		{"name": "a"},
		{"name": "c"},
		{"name": "b"},
	}

	Sort(entities, SortSpec{Attribute: "name"})
	assert.Equal(t, []string{"a", "b", "c"}, entityNames(entities))

	Sort(entities, SortSpec{Attribute: "name", Descending: true})
	assert.Equal(t, []string{"c", "b", "a"}, entityNames(entities))
}

func TestSortIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	entities := []entity.Entity{
		{"name": "Banana"},
		{"name": "apple"},
		{"name": "Cherry"},
	}

	Sort(entities, SortSpec{Attribute: "name"})
	assert.Equal(t, []string{"apple", "Banana", "Cherry"}, entityNames(entities))
}

func TestSortNumericAttribute(t *testing.T) {
	t.Parallel()

	entities := []entity.Entity{
		{"name": "a", "downloads": 100},
		{"name": "b", "downloads": 9},
		{"name": "c", "downloads": "25"},
	}

	// Numeric comparison, not lexicographic: 9 < 25 < 100.
	Sort(entities, SortSpec{Attribute: "downloads"})
	assert.Equal(t, []string{"b", "c", "a"}, entityNames(entities))
}

func TestSortMissingValuesLast(t *testing.T) {
	t.Parallel()

	entities := []entity.Entity{
		{"name": "x"},
		{"name": "y", "license": "Apache-2.0"},
		{"name": "z", "license": "MIT"},
	}

	Sort(entities, SortSpec{Attribute: "license"})
	assert.Equal(t, []string{"y", "z", "x"}, entityNames(entities))

	// Missing values stay last even when descending.
	Sort(entities, SortSpec{Attribute: "license", Descending: true})
	assert.Equal(t, []string{"z", "y", "x"}, entityNames(entities))
}

func TestSortTieBreakByIDThenNameAscending(t *testing.T) {
	t.Parallel()

	entities := []entity.Entity{
		{"id": "2", "name": "b", "license": "MIT"},
		{"id": "1", "name": "c", "license": "MIT"},
		{"id": "1", "name": "a", "license": "MIT"},
	}

	Sort(entities, SortSpec{Attribute: "license"})
	assert.Equal(t, []string{"a", "c", "b"}, entityNames(entities))

	// The tie-break stays ascending regardless of the requested direction.
	Sort(entities, SortSpec{Attribute: "license", Descending: true})
	assert.Equal(t, []string{"a", "c", "b"}, entityNames(entities))
}

func TestSortIsIdempotent(t *testing.T) {
	t.Parallel()

	entities := []entity.Entity{
		{"name": "b", "license": "MIT"},
		{"name": "a", "license": "MIT"},
		{"name": "c"},
		{"name": "d", "license": "Apache-2.0"},
	}

	Sort(entities, SortSpec{Attribute: "license"})
	once := entityNames(entities)
	Sort(entities, SortSpec{Attribute: "license"})
	assert.Equal(t, once, entityNames(entities))
}

func TestSortEmptyAttributeLeavesOrder(t *testing.T) {
	t.Parallel()

	entities := []entity.Entity{
		{"name": "b"},
		{"name": "a"},
	}

	Sort(entities, SortSpec{})
	assert.Equal(t, []string{"b", "a"}, entityNames(entities))
}
