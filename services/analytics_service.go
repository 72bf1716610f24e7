package services

import (
	"context"
	"fmt"
	"math"

	"nutrition-tracker/models"
	"nutrition-tracker/repositories"
)

// maxAnalyticsDays bounds the range a single summary may cover.
const maxAnalyticsDays = 366

type AnalyticsService struct {
	meals repositories.MealRepository
	users repositories.UserRepository
}

func NewAnalyticsService(meals repositories.MealRepository, users repositories.UserRepository) *AnalyticsService {
	return &AnalyticsService{meals: meals, users: users}
}

// ---------- Summary ----------

type NutrAvg struct {
	AvgConsumed float64 `json:"avgConsumed"`
	AvgGoal     float64 `json:"avgGoal,omitempty"`
	AvgPercent  float64 `json:"avgPercent,omitempty"`
	Unit        string  `json:"unit"`
}

type DateRange struct {
	From models.Date `json:"from"`
	To   models.Date `json:"to"`
}

type AnalyticsSummary struct {
	Range              DateRange          `json:"range"`
	Macros             map[string]NutrAvg `json:"macros"`
	Micros             map[string]NutrAvg `json:"micros"`
	DaysCounted        int                `json:"daysCounted"`
	IncludeMissingDays bool               `json:"includeMissingDays"`
}

// Summary averages daily intake over [from, to]. Days without meals only
// count toward the average when includeMissing is set. Calories are the only
// nutrient with a goal, taken from the user's profile.
func (s *AnalyticsService) Summary(ctx context.Context, userID uint, from, to models.Date, includeMissing bool) (*AnalyticsSummary, error) {
	if to.Before(from.Time) {
		return nil, fmt.Errorf("%w: end date must not be before start date", ErrInvalidInput)
	}
	if days := int(to.Sub(from.Time).Hours()/24) + 1; days > maxAnalyticsDays {
		return nil, fmt.Errorf("%w: range exceeds %d days", ErrInvalidInput, maxAnalyticsDays)
	}

	idx, _, err := s.dailyTotals(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	goal := s.goalKcal(ctx, userID)

	var dates []models.Date
	for d := from; !d.After(to.Time); d = models.NewDate(d.AddDate(0, 0, 1)) {
		if _, ok := idx[d.String()]; ok || includeMissing {
			dates = append(dates, d)
		}
	}

	var sum NutrientTotals
	var pctSum float64
	for _, d := range dates {
		t := idx[d.String()]
		sum.Calories += t.Calories
		sum.Protein += t.Protein
		sum.Carbohydrates += t.Carbohydrates
		sum.Fat += t.Fat
		sum.Fiber += t.Fiber
		sum.Sugar += t.Sugar
		sum.Sodium += t.Sodium
		sum.Cholesterol += t.Cholesterol
		if goal > 0 {
			pctSum += t.Calories / goal * 100
		}
	}

	n := len(dates)
	calories := NutrAvg{AvgConsumed: avg(sum.Calories, n), Unit: "kcal"}
	if goal > 0 && n > 0 {
		calories.AvgGoal = round2(goal)
		calories.AvgPercent = avg(pctSum, n)
	}

	return &AnalyticsSummary{
		Range: DateRange{From: from, To: to},
		Macros: map[string]NutrAvg{
			"calories":      calories,
			"protein":       {AvgConsumed: avg(sum.Protein, n), Unit: "g"},
			"carbohydrates": {AvgConsumed: avg(sum.Carbohydrates, n), Unit: "g"},
			"fat":           {AvgConsumed: avg(sum.Fat, n), Unit: "g"},
		},
		Micros: map[string]NutrAvg{
			"fiber":       {AvgConsumed: avg(sum.Fiber, n), Unit: "g"},
			"sugar":       {AvgConsumed: avg(sum.Sugar, n), Unit: "g"},
			"sodium":      {AvgConsumed: avg(sum.Sodium, n), Unit: "g"},
			"cholesterol": {AvgConsumed: avg(sum.Cholesterol, n), Unit: "g"},
		},
		DaysCounted:        n,
		IncludeMissingDays: includeMissing,
	}, nil
}

// ---------- Weekly Overview ----------

const (
	WeeklyModeChart    = "chart"
	WeeklyModeDetailed = "detailed"
)

type WeeklyOverview struct {
	WeekStart models.Date `json:"weekStart"`
	Mode      string      `json:"mode"`
	Days      any         `json:"days"`
}

type DayChart struct {
	Date           models.Date `json:"date"`
	CaloriePercent float64     `json:"caloriePercent"`
}

type DayDetailed struct {
	Date           models.Date    `json:"date"`
	MealCount      int            `json:"mealCount"`
	Totals         NutrientTotals `json:"totals"`
	CalorieTarget  float64        `json:"calorieTarget"`
	CaloriePercent float64        `json:"caloriePercent"`
}

// StartOfWeek returns the Monday on or before d.
func StartOfWeek(d models.Date) models.Date {
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	return models.NewDate(d.AddDate(0, 0, -(wd - 1)))
}

// WeeklyOverview reports seven consecutive days starting at the Monday of weekStart's week.
func (s *AnalyticsService) WeeklyOverview(ctx context.Context, userID uint, weekStart models.Date, mode string) (*WeeklyOverview, error) {
	if mode != WeeklyModeChart && mode != WeeklyModeDetailed {
		return nil, fmt.Errorf("%w: mode must be %q or %q", ErrInvalidInput, WeeklyModeChart, WeeklyModeDetailed)
	}

	from := StartOfWeek(weekStart)
	to := models.NewDate(from.AddDate(0, 0, 6))

	idx, counts, err := s.dailyTotals(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	goal := s.goalKcal(ctx, userID)

	out := &WeeklyOverview{WeekStart: from, Mode: mode}
	if mode == WeeklyModeChart {
		days := make([]DayChart, 0, 7)
		for i := 0; i < 7; i++ {
			d := models.NewDate(from.AddDate(0, 0, i))
			days = append(days, DayChart{Date: d, CaloriePercent: pct(idx[d.String()].Calories, goal)})
		}
		out.Days = days
		return out, nil
	}

	days := make([]DayDetailed, 0, 7)
	for i := 0; i < 7; i++ {
		d := models.NewDate(from.AddDate(0, 0, i))
		t := idx[d.String()]
		days = append(days, DayDetailed{
			Date:           d,
			MealCount:      counts[d.String()],
			Totals:         t.rounded(),
			CalorieTarget:  round2(goal),
			CaloriePercent: pct(t.Calories, goal),
		})
	}
	out.Days = days
	return out, nil
}

// ---------- internals ----------

// dailyTotals groups the user's meal lines in [from, to] by day and counts
// the meals logged on each day.
func (s *AnalyticsService) dailyTotals(ctx context.Context, userID uint, from, to models.Date) (map[string]NutrientTotals, map[string]int, error) {
	meals, err := s.meals.FindByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, nil, err
	}
	idx := make(map[string]NutrientTotals)
	counts := make(map[string]int)
	for _, m := range meals {
		key := m.MealDate.String()
		t := idx[key]
		for _, line := range m.MealFoods {
			if line.Food != nil {
				t.add(line.Food, line.ServingsOrDefault())
			}
		}
		idx[key] = t
		counts[key]++
	}
	return idx, counts, nil
}

// goalKcal returns 0 when neither an explicit goal nor an estimate is available.
func (s *AnalyticsService) goalKcal(ctx context.Context, userID uint) float64 {
	if g := calorieGoal(ctx, s.users, userID); g != nil && *g > 0 {
		return float64(*g)
	}
	return 0
}

func (t NutrientTotals) rounded() NutrientTotals {
	return NutrientTotals{
		Calories:      round2(t.Calories),
		Protein:       round2(t.Protein),
		Carbohydrates: round2(t.Carbohydrates),
		Fat:           round2(t.Fat),
		Fiber:         round2(t.Fiber),
		Sugar:         round2(t.Sugar),
		Sodium:        round2(t.Sodium),
		Cholesterol:   round2(t.Cholesterol),
	}
}

func pct(actual, goal float64) float64 {
	if goal <= 0 {
		if actual <= 0 {
			return 0
		}
		return 100
	}
	return round2(actual / goal * 100)
}

func avg(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
