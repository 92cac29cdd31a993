package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-recommender/internal/pkg/common"
)

// BodySizeLimit 拒絕超過 maxBytes 的請求體。
// 推薦與計畫請求只有短文字欄位，正常請求遠小於上限。
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			common.LogWarn("Request body too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_bytes", maxBytes),
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Request body too large",
				"code":      common.ErrCodeInvalidRequest,
				"max_bytes": maxBytes,
			})
			return
		}

		// Content-Length 可能缺席，讀取階段仍需上限兜底
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()
	}
}
