package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nutrition-tracker/models"
	"nutrition-tracker/repositories"
	"nutrition-tracker/utils"

	"gorm.io/gorm"
)

const DefaultLookupTimeout = 10 * time.Second

// BarcodeProvider resolves a barcode against an external product database.
// It returns an error wrapping ErrNotFound when the product is unknown.
type BarcodeProvider interface {
	LookupBarcode(ctx context.Context, barcode string) (*models.Food, error)
}

// BarcodeResult is the outcome of a successful scan.
type BarcodeResult struct {
	Food *models.Food
	// Local is true when the food came from the catalog without an upstream call.
	Local bool
}

type BarcodeService struct {
	foods    repositories.FoodRepository
	provider BarcodeProvider
	timeout  time.Duration
}

func NewBarcodeService(foods repositories.FoodRepository, provider BarcodeProvider, timeout time.Duration) *BarcodeService {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &BarcodeService{foods: foods, provider: provider, timeout: timeout}
}

// Lookup returns the food for barcode, consulting the catalog before the
// provider. Upstream hits are saved best-effort and returned even if the save fails.
func (s *BarcodeService) Lookup(ctx context.Context, barcode string) (*BarcodeResult, error) {
	code, ok := utils.NormalizeBarcode(barcode)
	if !ok {
		return nil, fmt.Errorf("%w: barcode must be 8-14 digits", ErrInvalidInput)
	}

	local, err := s.foods.FindByBarcode(ctx, code)
	switch {
	case err == nil:
		slog.Info("barcode found locally", "barcode", code, "foodID", local.ID)
		return &BarcodeResult{Food: local, Local: true}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		slog.Warn("local barcode lookup failed, falling back to provider", "barcode", code, "error", err)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	food, err := s.provider.LookupBarcode(lookupCtx, code)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, code)
		case isTimeout(err) || errors.Is(lookupCtx.Err(), context.DeadlineExceeded):
			slog.Warn("barcode provider timed out", "barcode", code, "timeout", s.timeout)
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		default:
			slog.Error("barcode provider failed", "barcode", code, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
		}
	}
	if food == nil {
		return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, code)
	}

	food.Barcode = code
	if err := s.foods.Save(ctx, food); err != nil {
		slog.Warn("failed to save scanned food", "barcode", code, "error", err)
	}
	return &BarcodeResult{Food: food}, nil
}
