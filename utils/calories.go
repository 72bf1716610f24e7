package utils

import (
	"errors"

	"nutrition-tracker/models"
)

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}

	h := heightCm / 100.0
	return weightKg / (h * h), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	default:
		return "Obese"
	}
}

var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary:        1.2,
	models.ActivityLightlyActive:    1.375,
	models.ActivityModeratelyActive: 1.55,
	models.ActivityVeryActive:       1.725,
	models.ActivityExtremelyActive:  1.9,
}

// ActivityMultiplier defaults to sedentary for unknown or unset levels.
func ActivityMultiplier(level models.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[models.ActivitySedentary]
}

func ValidActivityLevel(level models.ActivityLevel) bool {
	_, ok := activityMultipliers[level]
	return ok
}

// RecommendedCalories estimates daily energy needs with the Mifflin-St Jeor
// equation. It returns nil unless weight, height, age and gender are all set.
func RecommendedCalories(u *models.User) *int {
	if u == nil || u.Weight == nil || u.Height == nil || u.Age == nil || u.Gender == "" {
		return nil
	}

	bmr := 10*(*u.Weight) + 6.25*(*u.Height) - 5*float64(*u.Age)
	if u.Gender == models.GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	kcal := int(bmr * ActivityMultiplier(u.ActivityLevel))
	return &kcal
}
