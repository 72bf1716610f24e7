package services

import (
	"strings"

	"nutrition-tracker/models"
)

const (
	kjPerKcal        = 4.184
	saltToSodium     = 2.5
	servingBasis     = 100.0
	servingBasisUnit = "g"
)

// KJToKcal converts kilojoules to kilocalories.
func KJToKcal(kj float64) float64 { return kj / kjPerKcal }

// SodiumFromSalt derives grams of sodium from grams of salt.
func SodiumFromSalt(salt float64) float64 { return salt / saltToSodium }

// ServingScaleFactor returns the multiplier that takes a nutrient value reported
// for size/unit to a 100 g basis. Units other than g and mg are left unscaled.
func ServingScaleFactor(size float64, unit string) float64 {
	if size <= 0 {
		size = servingBasis
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "":
		return servingBasis / size
	case "mg":
		return servingBasis * 1000 / size
	default:
		return 1
	}
}

type nutrientSetter func(f *models.Food, v float64)

// usdaNutrients maps the FoodData Central vocabulary to Food fields.
// Keys are exact provider strings; anything not listed is ignored.
var usdaNutrients = map[string]nutrientSetter{
	"Energy":                       func(f *models.Food, v float64) { f.Calories = v },
	"Protein":                      func(f *models.Food, v float64) { f.Protein = v },
	"Carbohydrate, by difference":  func(f *models.Food, v float64) { f.Carbohydrates = v },
	"Total lipid (fat)":            func(f *models.Food, v float64) { f.Fat = v },
	"Fiber, total dietary":         func(f *models.Food, v float64) { f.Fiber = v },
	"Sugars, total including NLEA": func(f *models.Food, v float64) { f.Sugar = v },
	"Total Sugars": func(f *models.Food, v float64) {
		if f.Sugar == 0 {
			f.Sugar = v
		}
	},
	"Sodium, Na":  func(f *models.Food, v float64) { f.Sodium = v },
	"Cholesterol": func(f *models.Food, v float64) { f.Cholesterol = v },
}

// applyUSDANutrient sets the field named by the provider vocabulary. Energy
// reported in kJ only fills calories when no kcal entry was seen. Mass amounts
// are stored in grams, matching the Open Food Facts _100g fields.
func applyUSDANutrient(f *models.Food, name, unit string, value float64) bool {
	if name == "Energy" {
		if strings.EqualFold(unit, "kJ") {
			if f.Calories == 0 {
				f.Calories = KJToKcal(value)
			}
			return true
		}
	} else {
		value = massToGrams(value, unit)
	}
	set, ok := usdaNutrients[name]
	if !ok {
		return false
	}
	set(f, value)
	return true
}

// massToGrams converts mg and µg amounts; other units pass through.
func massToGrams(v float64, unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "mg":
		return v / 1000
	case "ug", "µg", "mcg":
		return v / 1_000_000
	default:
		return v
	}
}

// normalizeServing rescales every nutrient by factor and records the 100 g basis.
func normalizeServing(f *models.Food, factor float64) {
	f.Calories *= factor
	f.Protein *= factor
	f.Carbohydrates *= factor
	f.Fat *= factor
	f.Fiber *= factor
	f.Sugar *= factor
	f.Sodium *= factor
	f.Cholesterol *= factor
	f.ServingSize = servingBasis
	f.ServingUnit = servingBasisUnit
}
