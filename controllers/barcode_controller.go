package controllers

import (
	"errors"
	"net/http"

	"nutrition-tracker/models"
	"nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

const (
	msgProductFound    = "Product found successfully"
	msgProductNotFound = "Product not found in database"
	msgInvalidBarcode  = "Invalid barcode format. Must be 8-14 digits."
	msgLookupTimeout   = "API request timeout. Please try again."
	msgLookupFailed    = "Failed to retrieve product information"
)

// BarcodeFood is the food projection carried in a scan response.
type BarcodeFood struct {
	ID            uint              `json:"id,omitempty"`
	Name          string            `json:"name"`
	Brand         string            `json:"brand,omitempty"`
	Description   string            `json:"description,omitempty"`
	Barcode       string            `json:"barcode"`
	ImageURL      string            `json:"imageUrl,omitempty"`
	Source        models.FoodSource `json:"source"`
	ServingSize   float64           `json:"servingSize"`
	ServingUnit   string            `json:"servingUnit"`
	Calories      float64           `json:"calories"`
	Protein       float64           `json:"protein"`
	Carbohydrates float64           `json:"carbohydrates"`
	Fat           float64           `json:"fat"`
	Fiber         float64           `json:"fiber"`
	Sugar         float64           `json:"sugar"`
	Sodium        float64           `json:"sodium"`
	Cholesterol   float64           `json:"cholesterol"`
}

type BarcodeResponse struct {
	Found   bool         `json:"found"`
	Barcode string       `json:"barcode"`
	Message string       `json:"message"`
	Food    *BarcodeFood `json:"food,omitempty"`
}

func newBarcodeFood(f *models.Food) *BarcodeFood {
	return &BarcodeFood{
		ID:            f.ID,
		Name:          f.Name,
		Brand:         f.Brand,
		Description:   f.Description,
		Barcode:       f.Barcode,
		ImageURL:      f.ImageURL,
		Source:        f.Source,
		ServingSize:   f.ServingSize,
		ServingUnit:   f.ServingUnit,
		Calories:      f.Calories,
		Protein:       f.Protein,
		Carbohydrates: f.Carbohydrates,
		Fat:           f.Fat,
		Fiber:         f.Fiber,
		Sugar:         f.Sugar,
		Sodium:        f.Sodium,
		Cholesterol:   f.Cholesterol,
	}
}

type BarcodeController struct {
	Svc *services.BarcodeService
}

func NewBarcodeController(svc *services.BarcodeService) *BarcodeController {
	return &BarcodeController{Svc: svc}
}

// Scan handles GET /api/barcode/:barcode. Every outcome uses the scan envelope.
func (h *BarcodeController) Scan(c *gin.Context) {
	barcode := c.Param("barcode")

	res, err := h.Svc.Lookup(c.Request.Context(), barcode)
	if err != nil {
		status, msg := http.StatusInternalServerError, "Error: "+msgLookupFailed
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			status, msg = http.StatusBadRequest, "Error: "+msgInvalidBarcode
		case errors.Is(err, services.ErrNotFound):
			status, msg = http.StatusNotFound, msgProductNotFound
		case errors.Is(err, services.ErrUpstreamTimeout):
			status, msg = http.StatusGatewayTimeout, "Error: "+msgLookupTimeout
		}
		c.JSON(status, BarcodeResponse{Found: false, Barcode: barcode, Message: msg})
		return
	}

	c.JSON(http.StatusOK, BarcodeResponse{
		Found:   true,
		Barcode: res.Food.Barcode,
		Message: msgProductFound,
		Food:    newBarcodeFood(res.Food),
	})
}
