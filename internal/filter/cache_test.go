package filter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCachePutGet(t *testing.T) {
	t.Parallel()

	c := NewResultCache(4, time.Minute, "", nil)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("k1", []uint32{1, 2, 3})
	positions, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 2, 3}, positions)

	// The returned slice is a copy; mutating it must not corrupt the entry.
	positions[0] = 99
	positions, ok = c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 2, 3}, positions)
}

func TestResultCacheEvictsOldestInserted(t *testing.T) {
	t.Parallel()

	c := NewResultCache(2, time.Minute, "", nil)
	c.Put("k1", []uint32{1})
	c.Put("k2", []uint32{2})
	c.Put("k3", []uint32{3})

	_, ok := c.Get("k1")
	assert.False(t, ok, "oldest-inserted entry should be evicted")

	_, ok = c.Get("k2")
	assert.True(t, ok)
	_, ok = c.Get("k3")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestResultCacheExpiredEntryIsMissButNotPurged(t *testing.T) {
	t.Parallel()

	c := NewResultCache(4, 10*time.Millisecond, "", nil)
	c.Put("k1", []uint32{1})

	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("k1")
	assert.False(t, ok, "expired entry served as miss")
	assert.Equal(t, 1, c.Len(), "expired entry stays until swept")

	c.sweep()
	assert.Equal(t, 0, c.Len())
}

func TestResultCacheGenerationKeying(t *testing.T) {
	t.Parallel()

	filters := []string{"name=alpha"}
	keyGen1 := CacheKey(filters, 1)
	keyGen2 := CacheKey(filters, 2)
	require.NotEqual(t, keyGen1, keyGen2)

	c := NewResultCache(4, time.Minute, "", nil)
	c.Put(keyGen1, []uint32{1})

	// A rebuilt index changes the key, so old entries are simply never
	// consulted again.
	_, ok := c.Get(keyGen2)
	assert.False(t, ok)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "name=alpha:7", CacheKey([]string{"name=alpha"}, 7))
	assert.Equal(t, "name=a|name=b:1", CacheKey([]string{"name=a", "name=b"}, 1))
}

func TestResultCachePersistence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	c := NewResultCache(4, time.Minute, dir, nil)
	c.Put("k1", []uint32{1, 2})

	// Entry files are written asynchronously.
	require.Eventually(t, func() bool {
		matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
		return err == nil && len(matches) == 1
	}, time.Second, 10*time.Millisecond)

	restored := NewResultCache(4, time.Minute, dir, nil)
	positions, ok := restored.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 2}, positions)
}

func TestResultCachePersistenceSkipsCorruptFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("not json"), 0o600))

	c := NewResultCache(4, time.Minute, dir, nil)
	assert.Equal(t, 0, c.Len())
}
