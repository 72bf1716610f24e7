package services

import (
	"testing"

	"nutrition-tracker/models"

	"github.com/stretchr/testify/assert"
)

func TestKJToKcal(t *testing.T) {
	assert.InDelta(t, 538.95, KJToKcal(2255), 0.01)
	assert.Zero(t, KJToKcal(0))
}

func TestSodiumFromSalt(t *testing.T) {
	assert.InDelta(t, 0.107, SodiumFromSalt(0.2675), 1e-9)
}

func TestServingScaleFactor(t *testing.T) {
	tests := []struct {
		name string
		size float64
		unit string
		want float64
	}{
		{"grams", 50, "g", 2},
		{"grams upper case", 200, "G", 0.5},
		{"milligrams", 50000, "mg", 2},
		{"missing size defaults to 100", 0, "g", 1},
		{"empty unit treated as grams", 25, "", 4},
		{"other unit unscaled", 240, "ml", 1},
		{"ounces unscaled", 1, "oz", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ServingScaleFactor(tt.size, tt.unit), 1e-9)
		})
	}
}

func TestApplyUSDANutrient(t *testing.T) {
	t.Run("known names map to fields", func(t *testing.T) {
		var f models.Food
		for name, v := range map[string]float64{
			"Energy":                       52,
			"Protein":                      0.3,
			"Carbohydrate, by difference":  14,
			"Total lipid (fat)":            0.2,
			"Fiber, total dietary":         2.4,
			"Sugars, total including NLEA": 10,
			"Sodium, Na":                   1,
			"Cholesterol":                  0,
		} {
			assert.True(t, applyUSDANutrient(&f, name, "", v), name)
		}
		assert.Equal(t, 52.0, f.Calories)
		assert.Equal(t, 14.0, f.Carbohydrates)
		assert.Equal(t, 2.4, f.Fiber)
		assert.Equal(t, 10.0, f.Sugar)
	})

	t.Run("unknown names are ignored", func(t *testing.T) {
		var f models.Food
		assert.False(t, applyUSDANutrient(&f, "Vitamin C, total ascorbic acid", "MG", 4.6))
		assert.Equal(t, models.Food{}, f)
	})

	t.Run("NLEA sugars win regardless of order", func(t *testing.T) {
		var a, b models.Food
		applyUSDANutrient(&a, "Total Sugars", "G", 8)
		applyUSDANutrient(&a, "Sugars, total including NLEA", "G", 10)
		applyUSDANutrient(&b, "Sugars, total including NLEA", "G", 10)
		applyUSDANutrient(&b, "Total Sugars", "G", 8)
		assert.Equal(t, 10.0, a.Sugar)
		assert.Equal(t, 10.0, b.Sugar)
	})

	t.Run("milligram and microgram amounts are stored in grams", func(t *testing.T) {
		var f models.Food
		applyUSDANutrient(&f, "Sodium, Na", "MG", 480)
		applyUSDANutrient(&f, "Cholesterol", "mg", 25)
		applyUSDANutrient(&f, "Protein", "G", 3.5)
		assert.InDelta(t, 0.48, f.Sodium, 1e-9)
		assert.InDelta(t, 0.025, f.Cholesterol, 1e-9)
		assert.Equal(t, 3.5, f.Protein)

		var g models.Food
		applyUSDANutrient(&g, "Sodium, Na", "UG", 2000)
		assert.InDelta(t, 0.002, g.Sodium, 1e-12)
	})

	t.Run("energy in kJ only fills missing calories", func(t *testing.T) {
		var f models.Food
		applyUSDANutrient(&f, "Energy", "kJ", 2255)
		assert.InDelta(t, 538.95, f.Calories, 0.01)

		g := models.Food{Calories: 100}
		applyUSDANutrient(&g, "Energy", "kJ", 2255)
		assert.Equal(t, 100.0, g.Calories)
	})
}

func TestNormalizeServing(t *testing.T) {
	f := models.Food{Calories: 200, Protein: 10, ServingSize: 50, ServingUnit: "g"}
	normalizeServing(&f, ServingScaleFactor(50, "g"))

	assert.Equal(t, 400.0, f.Calories)
	assert.Equal(t, 20.0, f.Protein)
	assert.Equal(t, 100.0, f.ServingSize)
	assert.Equal(t, "g", f.ServingUnit)
}
