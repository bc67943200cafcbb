package handlers

import (
	"log/slog"
	"time"

	"sales-report-api/pkg/logger"
	"sales-report-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger はリクエストIDを採番し、リクエスト単位のロガーをコンテキストに格納します。
// クライアントが X-Request-ID を送った場合はその値を引き継ぎます。
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(services.RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		l := base.With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.ToContext(c.Request.Context(), l))

		start := time.Now()
		c.Next()

		l.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
