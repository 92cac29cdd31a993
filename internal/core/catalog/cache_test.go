package catalog

import (
	"fmt"
	"testing"

	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMeals(name string) []common.Meal {
	return []common.Meal{{Name: name, Calories: 300, Category: "lunch"}}
}

func TestCache_PutAndGet(t *testing.T) {
	c := NewCache(10, 2)

	c.Put("key-a", sampleMeals("Varan Bhaat"))

	got, ok := c.Get("key-a")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Varan Bhaat", got[0].Name)
}

func TestCache_GetMiss(t *testing.T) {
	c := NewCache(10, 2)

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := NewCache(10, 2)
	c.Put("key-a", sampleMeals("Poha"))

	got, ok := c.Get("key-a")
	require.True(t, ok)
	got[0].Name = "mutated"

	again, ok := c.Get("key-a")
	require.True(t, ok)
	assert.Equal(t, "Poha", again[0].Name, "cached entry should not observe caller mutations")
}

func TestCache_IgnoresEmptyValue(t *testing.T) {
	c := NewCache(10, 2)

	c.Put("key-a", nil)

	_, ok := c.Get("key-a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_EvictsOldestWithBuffer(t *testing.T) {
	c := NewCache(5, 2)

	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("key-%d", i), sampleMeals("meal"))
	}
	require.Equal(t, 5, c.Len())

	// Inserting past the ceiling evicts down to max minus buffer, then adds the new entry
	c.Put("key-5", sampleMeals("meal"))
	assert.Equal(t, 4, c.Len())

	_, ok := c.Get("key-0")
	assert.False(t, ok, "oldest entry should be evicted first")
	_, ok = c.Get("key-5")
	assert.True(t, ok, "newest entry should survive eviction")
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewCache(3, 1)

	c.Put("key-a", sampleMeals("first"))
	c.Put("key-b", sampleMeals("second"))
	c.Put("key-c", sampleMeals("third"))
	c.Put("key-a", sampleMeals("updated"))

	assert.Equal(t, 3, c.Len())
	got, ok := c.Get("key-a")
	require.True(t, ok)
	assert.Equal(t, "updated", got[0].Name)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(10, 2)
	c.Put("key-a", sampleMeals("meal"))
	c.Put("key-b", sampleMeals("meal"))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("key-a")
	assert.False(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := NewCache(10, 2)
	c.Put("key-a", sampleMeals("meal"))

	c.Get("key-a")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 0.5, stats["hit_ratio"])
}
