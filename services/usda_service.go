package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nutrition-tracker/models"
)

const usdaPageSize = 10

// USDAService queries FoodData Central and normalizes results to a 100 g basis.
type USDAService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewUSDAService(baseURL, apiKey string, client *http.Client) *USDAService {
	if client == nil {
		client = &http.Client{}
	}
	return &USDAService{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

type usdaSearchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FdcID           flexString     `json:"fdcId"`
	Description     flexString     `json:"description"`
	BrandOwner      flexString     `json:"brandOwner"`
	ServingSize     flexFloat      `json:"servingSize"`
	ServingSizeUnit flexString     `json:"servingSizeUnit"`
	FoodNutrients   []usdaNutrient `json:"foodNutrients"`
}

// usdaNutrient covers both the search shape (nutrientName/value) and the
// detail shape (nutrient.name/amount).
type usdaNutrient struct {
	NutrientName flexString `json:"nutrientName"`
	UnitName     flexString `json:"unitName"`
	Value        flexFloat  `json:"value"`
	Amount       flexFloat  `json:"amount"`
	Nutrient     *struct {
		Name     flexString `json:"name"`
		UnitName flexString `json:"unitName"`
	} `json:"nutrient"`
}

func (n usdaNutrient) nameUnitValue() (string, string, float64) {
	name, unit, v := string(n.NutrientName), string(n.UnitName), float64(n.Value)
	if n.Nutrient != nil {
		if name == "" {
			name = string(n.Nutrient.Name)
		}
		if unit == "" {
			unit = string(n.Nutrient.UnitName)
		}
	}
	if v == 0 {
		v = float64(n.Amount)
	}
	return name, unit, v
}

// SearchFoods returns up to ten normalized foods matching query.
func (s *USDAService) SearchFoods(ctx context.Context, query string) ([]models.Food, error) {
	q := url.Values{}
	q.Set("api_key", s.apiKey)
	q.Set("query", query)
	q.Set("pageSize", strconv.Itoa(usdaPageSize))

	var sr usdaSearchResponse
	if err := s.get(ctx, "/foods/search", q, &sr); err != nil {
		return nil, err
	}

	foods := make([]models.Food, 0, len(sr.Foods))
	for _, f := range sr.Foods {
		foods = append(foods, *f.toFood())
	}
	return foods, nil
}

// GetFood fetches a single food by FDC ID.
func (s *USDAService) GetFood(ctx context.Context, fdcID string) (*models.Food, error) {
	q := url.Values{}
	q.Set("api_key", s.apiKey)

	var f usdaFood
	if err := s.get(ctx, "/food/"+url.PathEscape(fdcID), q, &f); err != nil {
		return nil, err
	}
	return f.toFood(), nil
}

func (s *USDAService) get(ctx context.Context, path string, q url.Values, out any) error {
	u := s.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create USDA request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call USDA: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read USDA response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: USDA %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("USDA API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse USDA JSON: %w", err)
	}
	return nil
}

func (f usdaFood) toFood() *models.Food {
	food := &models.Food{
		FdcID:  string(f.FdcID),
		Name:   string(f.Description),
		Brand:  string(f.BrandOwner),
		Source: models.FoodSourceUSDA,
	}

	size := servingBasis
	if f.ServingSize > 0 {
		size = float64(f.ServingSize)
	}
	unit := string(f.ServingSizeUnit)
	if unit == "" {
		unit = servingBasisUnit
	}

	for _, n := range f.FoodNutrients {
		name, nutrientUnit, value := n.nameUnitValue()
		applyUSDANutrient(food, name, nutrientUnit, value)
	}
	normalizeServing(food, ServingScaleFactor(size, unit))
	return food
}
