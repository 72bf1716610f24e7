package controllers

import (
	"net/http"

	"nutrition-tracker/models"
	"nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Svc *services.MealService
}

func NewMealController(svc *services.MealService) *MealController {
	return &MealController{Svc: svc}
}

// POST /api/meals
func (h *MealController) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req services.CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	meal, err := h.Svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// GET /api/meals/:id
func (h *MealController) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	meal, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// GET /api/meals/date/:date
func (h *MealController) ListByDate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	date, ok := parseDate(c, "date", c.Param("date"))
	if !ok {
		return
	}

	meals, err := h.Svc.ListByDate(c.Request.Context(), userID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

// GET /api/meals/range?startDate=2024-01-01&endDate=2024-01-07
func (h *MealController) ListByRange(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	start, ok := parseDate(c, "startDate", c.Query("startDate"))
	if !ok {
		return
	}
	end, ok := parseDate(c, "endDate", c.Query("endDate"))
	if !ok {
		return
	}

	meals, err := h.Svc.ListByRange(c.Request.Context(), userID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

// GET /api/meals/summary/:date
func (h *MealController) DailySummary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	date, ok := parseDate(c, "date", c.Param("date"))
	if !ok {
		return
	}

	sum, err := h.Svc.DailySummary(c.Request.Context(), userID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// DELETE /api/meals/:id
func (h *MealController) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseDate(c *gin.Context, field, raw string) (models.Date, bool) {
	d, err := models.ParseDate(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation failed", map[string]string{field: "must be a date in YYYY-MM-DD format"})
		return models.Date{}, false
	}
	return d, true
}
