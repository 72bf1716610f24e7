package controllers

import (
	"net/http"

	"nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Svc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{Svc: svc}
}

// GET /api/users/profile
func (h *UserController) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	u, err := h.Svc.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewProfileView(u))
}

// PUT /api/users/profile
func (h *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewProfileView(u))
}

// GET /api/users/recommended-calories. The body is a bare integer, or null
// when the profile is incomplete.
func (h *UserController) RecommendedCalories(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	kcal, err := h.Svc.RecommendedCalories(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, kcal)
}
