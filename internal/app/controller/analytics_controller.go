package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		analyticsService: analyticsService,
	}
}

// GetDashboard returns the back office counters
// GET /api/v1/admin/analytics/dashboard
func (ctrl *AnalyticsController) GetDashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	dashboard, err := ctrl.analyticsService.GetDashboard()
	if err != nil {
		log.Error("Failed to build dashboard", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dashboard": dashboard,
	})
}

// GetRevenueBreakdown groups revenue by source
// GET /api/v1/admin/analytics/revenue?days=30
func (ctrl *AnalyticsController) GetRevenueBreakdown(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "days must be a positive integer")
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	breakdown, err := ctrl.analyticsService.GetRevenueBreakdown(since)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"since":     since,
		"breakdown": breakdown,
	})
}

// GetRecentActivity returns the latest audit entries
// GET /api/v1/admin/analytics/activity?limit=50
func (ctrl *AnalyticsController) GetRecentActivity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit must be between 1 and 200")
		return
	}

	activity, err := ctrl.analyticsService.GetRecentActivity(limit)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"activity": activity,
	})
}

// GetInvestorSummary returns aggregate figures for investors
// GET /api/v1/investor/summary
func (ctrl *AnalyticsController) GetInvestorSummary(c *gin.Context) {
	summary, err := ctrl.analyticsService.GetInvestorSummary()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
	})
}
