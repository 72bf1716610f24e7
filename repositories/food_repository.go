package repositories

import (
	"context"
	"strings"

	"nutrition-tracker/models"

	"gorm.io/gorm"
)

// FoodRepository is the local food catalog. Lookups that match nothing
// return gorm.ErrRecordNotFound.
type FoodRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Food, error)
	FindByBarcode(ctx context.Context, barcode string) (*models.Food, error)
	FindByFdcID(ctx context.Context, fdcID string) (*models.Food, error)
	SearchByName(ctx context.Context, name string) ([]models.Food, error)
	FindAll(ctx context.Context) ([]models.Food, error)
	Save(ctx context.Context, food *models.Food) error
	Delete(ctx context.Context, id uint) error
}

type foodRepo struct {
	db *gorm.DB
}

func NewFoodRepository(db *gorm.DB) FoodRepository {
	return &foodRepo{db: db}
}

func (r *foodRepo) FindByID(ctx context.Context, id uint) (*models.Food, error) {
	var food models.Food
	if err := r.db.WithContext(ctx).First(&food, id).Error; err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *foodRepo) FindByBarcode(ctx context.Context, barcode string) (*models.Food, error) {
	var food models.Food
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).Order("id").First(&food).Error
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *foodRepo) FindByFdcID(ctx context.Context, fdcID string) (*models.Food, error) {
	var food models.Food
	err := r.db.WithContext(ctx).Where("fdc_id = ?", fdcID).Order("id").First(&food).Error
	if err != nil {
		return nil, err
	}
	return &food, nil
}

// SearchByName matches name as a case-insensitive substring.
func (r *foodRepo) SearchByName(ctx context.Context, name string) ([]models.Food, error) {
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"
	var foods []models.Food
	err := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("name").
		Find(&foods).Error
	return foods, err
}

func (r *foodRepo) FindAll(ctx context.Context) ([]models.Food, error) {
	var foods []models.Food
	err := r.db.WithContext(ctx).Order("id").Find(&foods).Error
	return foods, err
}

// Save inserts food when it has no ID and updates it otherwise.
func (r *foodRepo) Save(ctx context.Context, food *models.Food) error {
	return r.db.WithContext(ctx).Save(food).Error
}

func (r *foodRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Food{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
