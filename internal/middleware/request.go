package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sanjeevni-health/sanjeevni/internal/logger"
	"github.com/sanjeevni-health/sanjeevni/internal/types"
)

// RequestID ensures every request carries a correlation id.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqID := ctx.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx.Set(types.ContextRequestIDKey, reqID)
		ctx.Writer.Header().Set("X-Request-ID", reqID)
		ctx.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		fields := []interface{}{
			"request_id", ctx.GetString(types.ContextRequestIDKey),
			"method", ctx.Request.Method,
			"path", path,
			"status", ctx.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", ctx.ClientIP(),
		}

		if len(ctx.Errors) > 0 {
			logger.L().Errorw("request failed", append(fields, "errors", ctx.Errors.String())...)
			return
		}

		if ctx.Writer.Status() >= 500 {
			logger.L().Warnw("request", fields...)
			return
		}

		logger.L().Infow("request", fields...)
	}
}
