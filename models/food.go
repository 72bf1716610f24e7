package models

import "time"

type FoodSource string

const (
	FoodSourceUSDA          FoodSource = "USDA"
	FoodSourceOpenFoodFacts FoodSource = "OPENFOODFACTS"
	FoodSourceUserCreated   FoodSource = "USER_CREATED"
	FoodSourceAIRecognized  FoodSource = "AI_RECOGNIZED"
)

func (s FoodSource) Valid() bool {
	switch s {
	case FoodSourceUSDA, FoodSourceOpenFoodFacts, FoodSourceUserCreated, FoodSourceAIRecognized:
		return true
	}
	return false
}

// Food is a catalog entry. Nutrient fields are expressed per ServingSize/ServingUnit;
// foods imported from providers are always normalized to 100 g. Every mass
// nutrient, sodium and cholesterol included, is in grams.
type Food struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null;index" json:"name"`
	Brand       string     `gorm:"size:255" json:"brand,omitempty"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Barcode     string     `gorm:"size:14;index" json:"barcode,omitempty"`
	FdcID       string     `gorm:"column:fdc_id;size:32;index" json:"fdcId,omitempty"`
	ImageURL    string     `gorm:"type:text" json:"imageUrl,omitempty"`
	Source      FoodSource `gorm:"size:20" json:"source"`

	ServingSize float64 `json:"servingSize"`
	ServingUnit string  `gorm:"size:20" json:"servingUnit"`

	Calories      float64 `gorm:"not null" json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
	Cholesterol   float64 `json:"cholesterol"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
