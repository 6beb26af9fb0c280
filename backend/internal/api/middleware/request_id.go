package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	applogger "github.com/raghava-0650/Attendeese/backend/pkg/logger"
)

const requestIDKey = "request_id"

// requestIDMaxLen 限制外部传入的 Request-ID 最大长度，防止日志注入
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 从请求头 X-Request-ID 读取，若不存在则自动生成 UUID
// 结果注入到 gin.Context 并设置响应头 X-Request-ID，
// 同时把带 request_id 字段的日志器放入 request context 供下游取用
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		scoped := logger.With(zap.String("request_id", rid))
		c.Request = c.Request.WithContext(applogger.WithContext(c.Request.Context(), scoped))

		c.Next()
	}
}
