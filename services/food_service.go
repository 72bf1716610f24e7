package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"nutrition-tracker/models"
	"nutrition-tracker/repositories"

	"gorm.io/gorm"
)

// FoodDatabase is a searchable external nutrient database.
type FoodDatabase interface {
	SearchFoods(ctx context.Context, query string) ([]models.Food, error)
	GetFood(ctx context.Context, externalID string) (*models.Food, error)
}

type FoodService struct {
	foods  repositories.FoodRepository
	remote FoodDatabase
}

func NewFoodService(foods repositories.FoodRepository, remote FoodDatabase) *FoodService {
	return &FoodService{foods: foods, remote: remote}
}

// CreateFoodRequest is a user-entered catalog item.
type CreateFoodRequest struct {
	Name          string   `json:"name" binding:"required,max=255"`
	Brand         string   `json:"brand" binding:"max=255"`
	Description   string   `json:"description"`
	Barcode       string   `json:"barcode" binding:"omitempty,numeric,min=8,max=14"`
	ImageURL      string   `json:"imageUrl" binding:"omitempty,url"`
	Source        string   `json:"source"`
	ServingSize   *float64 `json:"servingSize" binding:"omitempty,gt=0"`
	ServingUnit   string   `json:"servingUnit" binding:"max=20"`
	Calories      *float64 `json:"calories" binding:"required,gte=0"`
	Protein       float64  `json:"protein" binding:"gte=0"`
	Carbohydrates float64  `json:"carbohydrates" binding:"gte=0"`
	Fat           float64  `json:"fat" binding:"gte=0"`
	Fiber         float64  `json:"fiber" binding:"gte=0"`
	Sugar         float64  `json:"sugar" binding:"gte=0"`
	Sodium        float64  `json:"sodium" binding:"gte=0"`
	Cholesterol   float64  `json:"cholesterol" binding:"gte=0"`
}

func (s *FoodService) List(ctx context.Context) ([]models.Food, error) {
	return s.foods.FindAll(ctx)
}

func (s *FoodService) Get(ctx context.Context, id uint) (*models.Food, error) {
	food, err := s.foods.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: food %d", ErrNotFound, id)
	}
	return food, err
}

// GetByBarcode only consults the local catalog.
func (s *FoodService) GetByBarcode(ctx context.Context, barcode string) (*models.Food, error) {
	food, err := s.foods.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, barcode)
	}
	return food, err
}

// Search matches name against the catalog. When nothing matches locally the
// remote database is queried and its results are saved best-effort. A remote
// failure yields an empty result rather than an error.
func (s *FoodService) Search(ctx context.Context, name string) ([]models.Food, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	local, err := s.foods.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 || s.remote == nil {
		return local, nil
	}

	remote, err := s.remote.SearchFoods(ctx, name)
	if err != nil {
		slog.Warn("remote food search failed", "query", name, "error", err)
		return []models.Food{}, nil
	}
	for i := range remote {
		if err := s.foods.Save(ctx, &remote[i]); err != nil {
			slog.Warn("failed to save remote food", "name", remote[i].Name, "error", err)
		}
	}
	return remote, nil
}

// ImportExternal returns the catalog food with the given external ID, fetching
// and saving it from the remote database when it is not known yet.
func (s *FoodService) ImportExternal(ctx context.Context, externalID string) (*models.Food, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", ErrInvalidInput)
	}

	food, err := s.foods.FindByFdcID(ctx, externalID)
	if err == nil {
		return food, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if s.remote == nil {
		return nil, fmt.Errorf("%w: food %s", ErrNotFound, externalID)
	}

	food, err = s.remote.GetFood(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	if err := s.foods.Save(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

func (s *FoodService) Create(ctx context.Context, req CreateFoodRequest) (*models.Food, error) {
	source := models.FoodSource(strings.ToUpper(strings.TrimSpace(req.Source)))
	if source == "" {
		source = models.FoodSourceUserCreated
	}
	if !source.Valid() {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	food := &models.Food{
		Name:          strings.TrimSpace(req.Name),
		Brand:         strings.TrimSpace(req.Brand),
		Description:   req.Description,
		Barcode:       strings.TrimSpace(req.Barcode),
		ImageURL:      req.ImageURL,
		Source:        source,
		ServingSize:   servingBasis,
		ServingUnit:   firstNonEmpty(req.ServingUnit, servingBasisUnit),
		Protein:       req.Protein,
		Carbohydrates: req.Carbohydrates,
		Fat:           req.Fat,
		Fiber:         req.Fiber,
		Sugar:         req.Sugar,
		Sodium:        req.Sodium,
		Cholesterol:   req.Cholesterol,
	}
	if food.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Calories != nil {
		food.Calories = *req.Calories
	}
	if req.ServingSize != nil {
		food.ServingSize = *req.ServingSize
	}

	if err := s.foods.Save(ctx, food); err != nil {
		return nil, fmt.Errorf("failed to save food: %w", err)
	}
	return food, nil
}
