package controllers

import (
	"net/http"
	"time"

	"nutrition-tracker/models"
	"nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

// GET /api/analytics/summary?from=&to=&includeMissingDays=
// The range defaults to the current calendar month.
func (h *AnalyticsController) GetAnalyticsSummary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	today := models.NewDate(time.Now())
	first := models.NewDate(today.AddDate(0, 0, 1-today.Day()))
	last := models.NewDate(first.AddDate(0, 1, -1))

	from, ok := parseDate(c, "from", c.DefaultQuery("from", first.String()))
	if !ok {
		return
	}
	to, ok := parseDate(c, "to", c.DefaultQuery("to", last.String()))
	if !ok {
		return
	}
	includeMissing := c.DefaultQuery("includeMissingDays", "false") == "true"

	out, err := h.Svc.Summary(c.Request.Context(), userID, from, to, includeMissing)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/analytics/weekly?weekStart=&mode=chart|detailed
func (h *AnalyticsController) GetWeeklyOverview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	weekStart := models.NewDate(time.Now())
	if v := c.Query("weekStart"); v != "" {
		d, ok := parseDate(c, "weekStart", v)
		if !ok {
			return
		}
		weekStart = d
	}
	mode := c.DefaultQuery("mode", services.WeeklyModeDetailed)

	out, err := h.Svc.WeeklyOverview(c.Request.Context(), userID, weekStart, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
