package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/logger"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
)

func HealthCheck(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, database, code := "ok", "ok", http.StatusOK

	if err := db.Ping(pingCtx); err != nil {
		logger.L().Warnw("health check database ping failed", "error", err)
		status, database, code = "degraded", "unavailable", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"message":   "Sanjeevni is running",
		"timestamp": services.Now().Format(time.RFC3339),
		"database":  database,
	})
}
