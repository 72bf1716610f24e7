package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"nutrition-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offFood(barcode string) *models.Food {
	return &models.Food{Name: "Nutella", Barcode: barcode, Source: models.FoodSourceOpenFoodFacts, Calories: 539, ServingSize: 100, ServingUnit: "g"}
}

func TestBarcodeLookupValidation(t *testing.T) {
	valid := []string{"12345678", "123456789012", "3017620422003", "12345678901234", " 3017620422003 "}
	invalid := []string{"", "   ", "1234567", "123456789012345", "abcdefgh", "1234567a", "12 345678", "-1234567", "１２３４５６７８"}

	provider := &stubProvider{lookup: func(ctx context.Context, b string) (*models.Food, error) { return offFood(b), nil }}
	svc := NewBarcodeService(newMemFoodRepo(), provider, time.Second)

	for _, b := range valid {
		t.Run("valid "+b, func(t *testing.T) {
			res, err := svc.Lookup(context.Background(), b)
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(b), res.Food.Barcode)
		})
	}
	for _, b := range invalid {
		t.Run("invalid "+b, func(t *testing.T) {
			_, err := svc.Lookup(context.Background(), b)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestBarcodeLookupLocalHitSkipsProvider(t *testing.T) {
	repo := newMemFoodRepo(models.Food{Name: "Local Bar", Barcode: "12345678", Calories: 120})
	provider := &stubProvider{}
	svc := NewBarcodeService(repo, provider, time.Second)

	res, err := svc.Lookup(context.Background(), "12345678")
	require.NoError(t, err)
	assert.True(t, res.Local)
	assert.Equal(t, "Local Bar", res.Food.Name)
	assert.Zero(t, provider.count())
}

func TestBarcodeLookupPersistsUpstreamHit(t *testing.T) {
	repo := newMemFoodRepo()
	provider := &stubProvider{lookup: func(ctx context.Context, b string) (*models.Food, error) { return offFood(b), nil }}
	svc := NewBarcodeService(repo, provider, time.Second)

	res, err := svc.Lookup(context.Background(), "3017620422003")
	require.NoError(t, err)
	assert.False(t, res.Local)
	assert.NotZero(t, res.Food.ID)
	assert.Equal(t, 1, repo.saves)

	// second scan is served locally
	res, err = svc.Lookup(context.Background(), "3017620422003")
	require.NoError(t, err)
	assert.True(t, res.Local)
	assert.Equal(t, 1, provider.count())
}

func TestBarcodeLookupSaveFailureStillReturnsFood(t *testing.T) {
	repo := newMemFoodRepo()
	repo.saveErr = errors.New("disk full")
	provider := &stubProvider{lookup: func(ctx context.Context, b string) (*models.Food, error) { return offFood(b), nil }}
	svc := NewBarcodeService(repo, provider, time.Second)

	res, err := svc.Lookup(context.Background(), "3017620422003")
	require.NoError(t, err)
	assert.Equal(t, "Nutella", res.Food.Name)
	assert.Zero(t, res.Food.ID)
	assert.Equal(t, 1, repo.saves)
}

func TestBarcodeLookupLocalErrorFallsBackToProvider(t *testing.T) {
	repo := newMemFoodRepo()
	repo.findErr = errors.New("connection reset")
	provider := &stubProvider{lookup: func(ctx context.Context, b string) (*models.Food, error) { return offFood(b), nil }}
	svc := NewBarcodeService(repo, provider, time.Second)

	res, err := svc.Lookup(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.count())
	assert.Equal(t, "Nutella", res.Food.Name)
}

func TestBarcodeLookupNotFound(t *testing.T) {
	provider := &stubProvider{lookup: func(ctx context.Context, b string) (*models.Food, error) {
		return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, b)
	}}
	svc := NewBarcodeService(newMemFoodRepo(), provider, time.Second)

	_, err := svc.Lookup(context.Background(), "00000000")
	assert.ErrorIs(t, err, ErrNotFound)

	provider.lookup = func(ctx context.Context, b string) (*models.Food, error) { return nil, nil }
	_, err = svc.Lookup(context.Background(), "00000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBarcodeLookupTimeout(t *testing.T) {
	provider := &stubProvider{lookup: func(ctx context.Context, b string) (*models.Food, error) {
		<-ctx.Done()
		return nil, fmt.Errorf("failed to call Open Food Facts: %w", ctx.Err())
	}}
	svc := NewBarcodeService(newMemFoodRepo(), provider, 20*time.Millisecond)

	start := time.Now()
	_, err := svc.Lookup(context.Background(), "12345678")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, provider.count())
}

func TestBarcodeLookupUpstreamFailure(t *testing.T) {
	provider := &stubProvider{lookup: func(ctx context.Context, b string) (*models.Food, error) {
		return nil, errors.New("open food facts API error 503")
	}}
	svc := NewBarcodeService(newMemFoodRepo(), provider, time.Second)

	_, err := svc.Lookup(context.Background(), "12345678")
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.NotErrorIs(t, err, ErrUpstreamTimeout)
	assert.Equal(t, 1, provider.count(), "no retries")
}

func TestNewBarcodeServiceDefaultsTimeout(t *testing.T) {
	svc := NewBarcodeService(newMemFoodRepo(), &stubProvider{}, 0)
	assert.Equal(t, DefaultLookupTimeout, svc.timeout)
}
