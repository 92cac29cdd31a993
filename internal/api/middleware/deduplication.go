package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"
)

// dedupPurgeThreshold 指紋表超過此筆數時順帶清掉過期項目
const dedupPurgeThreshold = 1024

// dedupStore 記錄最近看過的請求指紋，窗口內重複的推薦請求會被擋下
type dedupStore struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
}

func newDedupStore(window time.Duration) *dedupStore {
	return &dedupStore{
		seen:   make(map[string]time.Time),
		window: window,
	}
}

// remember 回報指紋是否在窗口內出現過，並記錄本次出現時間
func (s *dedupStore) remember(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if len(s.seen) > dedupPurgeThreshold {
		for k, t := range s.seen {
			if now.Sub(t) > s.window {
				delete(s.seen, k)
			}
		}
	}

	if last, ok := s.seen[fingerprint]; ok && now.Sub(last) <= s.window {
		return true
	}
	s.seen[fingerprint] = now
	return false
}

// Deduplication 推薦與餐點計畫請求的短窗去重，
// 同一來源連續送出相同內容的 POST 時直接回 429
func Deduplication(cfg *config.Config) gin.HandlerFunc {
	window := time.Second
	if cfg != nil && cfg.DedupWindow > 0 {
		window = cfg.DedupWindow
	}
	store := newDedupStore(window)

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.LogError("Failed to read request body", zap.Error(err))
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		// 指紋含客戶端 IP，不同使用者送相同食材清單不會互相擋到
		sum := sha256.Sum256(body)
		fingerprint := c.Request.URL.Path + ":" + c.ClientIP() + ":" + hex.EncodeToString(sum[:])

		if store.remember(fingerprint) {
			common.LogWarn("Duplicate request suppressed",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Duplicate request, please wait before retrying",
				"code":  common.ErrCodeTooManyRequests,
			})
			return
		}

		c.Next()
	}
}
