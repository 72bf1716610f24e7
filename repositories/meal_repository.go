package repositories

import (
	"context"

	"nutrition-tracker/models"

	"gorm.io/gorm"
)

// MealRepository always returns meals with MealFoods and their Food populated.
type MealRepository interface {
	Create(ctx context.Context, meal *models.Meal) error
	FindByID(ctx context.Context, id uint) (*models.Meal, error)
	FindByUserAndDate(ctx context.Context, userID uint, date models.Date) ([]models.Meal, error)
	FindByUserAndDateRange(ctx context.Context, userID uint, start, end models.Date) ([]models.Meal, error)
	Delete(ctx context.Context, id uint) error
}

type mealRepo struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepo{db: db}
}

// Create stores the meal and all of its line items in one transaction.
func (r *mealRepo) Create(ctx context.Context, meal *models.Meal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("MealFoods").Create(meal).Error; err != nil {
			return err
		}
		for i := range meal.MealFoods {
			meal.MealFoods[i].MealID = meal.ID
			if err := tx.Omit("Food").Create(&meal.MealFoods[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *mealRepo) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("MealFoods", func(db *gorm.DB) *gorm.DB { return db.Order("meal_foods.id") }).
		Preload("MealFoods.Food")
}

func (r *mealRepo) FindByID(ctx context.Context, id uint) (*models.Meal, error) {
	var meal models.Meal
	if err := r.withLines(ctx).First(&meal, id).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (r *mealRepo) FindByUserAndDate(ctx context.Context, userID uint, date models.Date) ([]models.Meal, error) {
	var meals []models.Meal
	err := r.withLines(ctx).
		Where("user_id = ? AND meal_date = ?", userID, date).
		Order("id").
		Find(&meals).Error
	return meals, err
}

func (r *mealRepo) FindByUserAndDateRange(ctx context.Context, userID uint, start, end models.Date) ([]models.Meal, error) {
	var meals []models.Meal
	err := r.withLines(ctx).
		Where("user_id = ? AND meal_date BETWEEN ? AND ?", userID, start, end).
		Order("meal_date, id").
		Find(&meals).Error
	return meals, err
}

// Delete removes the meal and its line items atomically.
func (r *mealRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_id = ?", id).Delete(&models.MealFood{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Meal{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
