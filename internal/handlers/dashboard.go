package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
)

// DashboardSummary assembles every dashboard section. Sections fail
// independently, so the response always carries every key.
func DashboardSummary(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	summary := services.BuildDashboard(db.DB.WithContext(ctx.Request.Context()), userID, services.Now(), services.DashboardSections)

	ctx.JSON(http.StatusOK, summary)
}

func DashboardStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := services.BuildDashboardStats(db.DB.WithContext(ctx.Request.Context()), userID, services.Now())

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to build dashboard stats")
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
