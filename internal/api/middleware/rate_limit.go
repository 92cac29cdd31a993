package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"meal-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// tokenBucket 全站共用的令牌桶，依經過時間按比例補充
type tokenBucket struct {
	mu     sync.Mutex
	tokens float64
	cap    float64
	rate   float64 // 每秒補充量
	last   time.Time
}

func newTokenBucket(requests int, window time.Duration) *tokenBucket {
	return &tokenBucket{
		tokens: float64(requests),
		cap:    float64(requests),
		rate:   float64(requests) / window.Seconds(),
		last:   time.Now(),
	}
}

// take 嘗試取一枚令牌，桶空時回 false
func (b *tokenBucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * b.rate
	if b.tokens > b.cap {
		b.tokens = b.cap
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit 推薦端點的限流中間件，超量時回 429 並附 Retry-After
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	bucket := newTokenBucket(requests, window)
	retryAfter := int(window.Seconds())

	return func(c *gin.Context) {
		if bucket.take() {
			c.Next()
			return
		}

		common.LogWarn("Rate limit exceeded",
			zap.String("ip", c.ClientIP()),
			zap.String("path", c.Request.URL.Path),
		)
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many requests",
			"code":        common.ErrCodeTooManyRequests,
			"retry_after": retryAfter,
		})
	}
}
