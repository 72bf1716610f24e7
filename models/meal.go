package models

import (
	"strings"
	"time"
)

type MealType string

const (
	MealTypeBreakfast MealType = "BREAKFAST"
	MealTypeLunch     MealType = "LUNCH"
	MealTypeDinner    MealType = "DINNER"
	MealTypeSnack     MealType = "SNACK"
)

func ParseMealType(s string) (MealType, bool) {
	t := MealType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return t, true
	}
	return "", false
}

// Meal is owned by exactly one user and exclusively owns its MealFoods.
type Meal struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"userId"`
	MealType  MealType   `gorm:"size:16;not null" json:"mealType"`
	MealDate  Date       `gorm:"type:date;not null;index" json:"mealDate"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
	MealFoods []MealFood `gorm:"constraint:OnDelete:CASCADE" json:"mealFoods"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// MealFood is one line item of a meal.
type MealFood struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	MealID       uint     `gorm:"not null;index" json:"-"`
	FoodID       uint     `gorm:"not null;index" json:"foodId"`
	Food         *Food    `gorm:"constraint:OnDelete:RESTRICT" json:"food,omitempty"`
	Quantity     float64  `gorm:"not null" json:"quantity"`
	QuantityUnit string   `gorm:"size:20" json:"quantityUnit,omitempty"`
	Servings     *float64 `json:"servings,omitempty"`
}

// ServingsOrDefault returns the servings multiplier, treating an unset value as one serving.
func (mf MealFood) ServingsOrDefault() float64 {
	if mf.Servings == nil || *mf.Servings <= 0 {
		return 1
	}
	return *mf.Servings
}
