package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"nutrition-tracker/models"
	"nutrition-tracker/repositories"
	"nutrition-tracker/utils"

	"gorm.io/gorm"
)

// EventPublisher pushes a payload to every live connection of a user.
type EventPublisher interface {
	Broadcast(userID uint, payload any)
}

type MealService struct {
	meals  repositories.MealRepository
	foods  repositories.FoodRepository
	users  repositories.UserRepository
	events EventPublisher
}

func NewMealService(meals repositories.MealRepository, foods repositories.FoodRepository, users repositories.UserRepository, events EventPublisher) *MealService {
	return &MealService{meals: meals, foods: foods, users: users, events: events}
}

type MealFoodRequest struct {
	FoodID       uint     `json:"foodId" binding:"required"`
	Quantity     *float64 `json:"quantity" binding:"required,gt=0"`
	QuantityUnit string   `json:"quantityUnit" binding:"max=20"`
	Servings     *float64 `json:"servings" binding:"omitempty,gt=0"`
}

type CreateMealRequest struct {
	MealType string            `json:"mealType" binding:"required"`
	MealDate *models.Date      `json:"mealDate" binding:"required"`
	Notes    string            `json:"notes"`
	Foods    []MealFoodRequest `json:"foods" binding:"dive"`
}

// MealEvent is pushed to the owner's websocket connections.
type MealEvent struct {
	Type   string       `json:"type"`
	MealID uint         `json:"mealId"`
	Date   models.Date  `json:"date"`
	Meal   *models.Meal `json:"meal,omitempty"`
}

const (
	EventMealCreated = "meal.created"
	EventMealDeleted = "meal.deleted"
)

// Create resolves every referenced food and stores the meal with its line
// items in one transaction.
func (s *MealService) Create(ctx context.Context, userID uint, req CreateMealRequest) (*models.Meal, error) {
	mealType, ok := models.ParseMealType(req.MealType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown meal type %q", ErrInvalidInput, req.MealType)
	}
	if req.MealDate == nil || req.MealDate.IsZero() {
		return nil, fmt.Errorf("%w: meal date is required", ErrInvalidInput)
	}

	meal := &models.Meal{
		UserID:    userID,
		MealType:  mealType,
		MealDate:  *req.MealDate,
		Notes:     strings.TrimSpace(req.Notes),
		MealFoods: make([]models.MealFood, 0, len(req.Foods)),
	}
	for i, item := range req.Foods {
		if item.Quantity == nil {
			return nil, fmt.Errorf("%w: foods[%d].quantity is required", ErrInvalidInput, i)
		}
		food, err := s.foods.FindByID(ctx, item.FoodID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: food %d", ErrNotFound, item.FoodID)
		}
		if err != nil {
			return nil, err
		}
		meal.MealFoods = append(meal.MealFoods, models.MealFood{
			FoodID:       food.ID,
			Food:         food,
			Quantity:     *item.Quantity,
			QuantityUnit: firstNonEmpty(item.QuantityUnit, food.ServingUnit),
			Servings:     item.Servings,
		})
	}

	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}
	slog.Info("meal created", "userID", userID, "mealID", meal.ID, "items", len(meal.MealFoods))
	s.publish(userID, MealEvent{Type: EventMealCreated, MealID: meal.ID, Date: meal.MealDate, Meal: meal})
	return meal, nil
}

// Get returns the meal if it belongs to userID.
func (s *MealService) Get(ctx context.Context, userID, mealID uint) (*models.Meal, error) {
	meal, err := s.meals.FindByID(ctx, mealID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: meal %d", ErrNotFound, mealID)
	}
	if err != nil {
		return nil, err
	}
	if meal.UserID != userID {
		return nil, fmt.Errorf("%w: meal %d belongs to another user", ErrUnauthorized, mealID)
	}
	return meal, nil
}

func (s *MealService) ListByDate(ctx context.Context, userID uint, date models.Date) ([]models.Meal, error) {
	return s.meals.FindByUserAndDate(ctx, userID, date)
}

func (s *MealService) ListByRange(ctx context.Context, userID uint, start, end models.Date) ([]models.Meal, error) {
	if end.Before(start.Time) {
		return nil, fmt.Errorf("%w: startDate must not be after endDate", ErrInvalidInput)
	}
	return s.meals.FindByUserAndDateRange(ctx, userID, start, end)
}

// Delete removes the meal and its line items after checking ownership.
func (s *MealService) Delete(ctx context.Context, userID, mealID uint) error {
	meal, err := s.Get(ctx, userID, mealID)
	if err != nil {
		return err
	}
	if err := s.meals.Delete(ctx, meal.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: meal %d", ErrNotFound, mealID)
		}
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	slog.Info("meal deleted", "userID", userID, "mealID", mealID)
	s.publish(userID, MealEvent{Type: EventMealDeleted, MealID: mealID, Date: meal.MealDate})
	return nil
}

// NutrientTotals sums nutrients over a set of meal lines.
type NutrientTotals struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
	Cholesterol   float64 `json:"cholesterol"`
}

func (t *NutrientTotals) add(f *models.Food, servings float64) {
	t.Calories += f.Calories * servings
	t.Protein += f.Protein * servings
	t.Carbohydrates += f.Carbohydrates * servings
	t.Fat += f.Fat * servings
	t.Fiber += f.Fiber * servings
	t.Sugar += f.Sugar * servings
	t.Sodium += f.Sodium * servings
	t.Cholesterol += f.Cholesterol * servings
}

type DailySummary struct {
	Date         models.Date                        `json:"date"`
	MealCount    int                                `json:"mealCount"`
	Totals       NutrientTotals                     `json:"totals"`
	ByMealType   map[models.MealType]NutrientTotals `json:"byMealType"`
	CalorieGoal  *int                               `json:"calorieGoal"`
	GoalPercent  *float64                           `json:"goalPercent"`
	CaloriesLeft *float64                           `json:"caloriesLeft"`
}

// DailySummary totals the user's meals for date. Each line contributes its
// food's nutrients times its servings.
func (s *MealService) DailySummary(ctx context.Context, userID uint, date models.Date) (*DailySummary, error) {
	meals, err := s.meals.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	sum := &DailySummary{
		Date:       date,
		MealCount:  len(meals),
		ByMealType: make(map[models.MealType]NutrientTotals),
	}
	for _, m := range meals {
		byType := sum.ByMealType[m.MealType]
		for _, line := range m.MealFoods {
			if line.Food == nil {
				continue
			}
			sum.Totals.add(line.Food, line.ServingsOrDefault())
			byType.add(line.Food, line.ServingsOrDefault())
		}
		sum.ByMealType[m.MealType] = byType
	}

	if goal := calorieGoal(ctx, s.users, userID); goal != nil && *goal > 0 {
		pct := math.Round(sum.Totals.Calories/float64(*goal)*1000) / 10
		left := float64(*goal) - sum.Totals.Calories
		sum.CalorieGoal, sum.GoalPercent, sum.CaloriesLeft = goal, &pct, &left
	}
	return sum, nil
}

// calorieGoal prefers the user's explicit goal and falls back to the recommendation.
func calorieGoal(ctx context.Context, users repositories.UserRepository, userID uint) *int {
	if users == nil {
		return nil
	}
	u, err := users.FindByID(ctx, userID)
	if err != nil {
		return nil
	}
	if u.DailyCalorieGoal != nil {
		return u.DailyCalorieGoal
	}
	return utils.RecommendedCalories(u)
}

func (s *MealService) publish(userID uint, evt MealEvent) {
	if s.events != nil {
		s.events.Broadcast(userID, evt)
	}
}
