package catalog

import (
	"sync"

	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Cache 目錄查詢結果的有界快取，依插入順序淘汰
type Cache struct {
	mu         sync.RWMutex
	entries    map[string][]common.Meal
	order      []string
	maxEntries int
	buffer     int
	stats      cacheStats
}

// cacheStats 快取統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
	resets    int64
}

// NewCache 建立新的目錄快取
func NewCache(maxEntries, buffer int) *Cache {
	c := &Cache{
		entries:    make(map[string][]common.Meal),
		order:      make([]string, 0),
		maxEntries: maxEntries,
		buffer:     buffer,
	}

	common.LogInfo("目錄快取已初始化",
		zap.Int("最大容量", maxEntries),
		zap.Int("淘汰緩衝", buffer),
	)

	return c
}

// Get 取得快取的餐點列表
func (c *Cache) Get(key string) ([]common.Meal, bool) {
	c.mu.RLock()
	meals, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.mu.Lock()
		c.stats.misses++
		c.mu.Unlock()
		common.LogCacheMiss("catalog", key)
		return nil, false
	}

	c.mu.Lock()
	c.stats.hits++
	c.mu.Unlock()
	common.LogCacheHit("catalog", key)

	// 回傳副本，避免呼叫端修改快取內容
	out := make([]common.Meal, len(meals))
	copy(out, meals)
	return out, true
}

// Put 存入餐點列表，必要時先淘汰最舊的條目
func (c *Cache) Put(key string, meals []common.Meal) {
	if len(meals) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	stored := make([]common.Meal, len(meals))
	copy(stored, meals)

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = stored
}

// evictOldest 淘汰最舊條目，清到上限減緩衝為止；呼叫端需持有寫鎖
func (c *Cache) evictOldest() {
	target := c.maxEntries - c.buffer
	if target < 0 {
		target = 0
	}

	for len(c.entries) > target && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, exists := c.entries[oldest]; !exists {
			// 順序表與條目表不一致，整個清空重來
			c.resetLocked()
			common.LogWarn("目錄快取狀態不一致，已全部清空")
			return
		}
		delete(c.entries, oldest)
		c.stats.evictions++
	}

	common.LogInfo("目錄快取已淘汰舊條目",
		zap.Int("目前容量", len(c.entries)),
		zap.Int64("累計淘汰", c.stats.evictions),
	)
}

// Clear 清空所有條目
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// resetLocked 重建內部狀態；呼叫端需持有寫鎖
func (c *Cache) resetLocked() {
	c.entries = make(map[string][]common.Meal)
	c.order = make([]string, 0)
	c.stats.resets++
}

// Len 回傳目前條目數
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats 取得快取統計資訊
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.stats.hits + c.stats.misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(c.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(c.entries),
		"max_size":  c.maxEntries,
		"hits":      c.stats.hits,
		"misses":    c.stats.misses,
		"evictions": c.stats.evictions,
		"resets":    c.stats.resets,
		"hit_ratio": ratio,
	}
}
