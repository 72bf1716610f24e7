package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nutrition-tracker/models"
)

const unknownProductName = "Unknown Product"

// OpenFoodFactsService looks up packaged products by barcode.
type OpenFoodFactsService struct {
	baseURL string
	client  *http.Client
}

func NewOpenFoodFactsService(baseURL string, client *http.Client) *OpenFoodFactsService {
	if client == nil {
		client = &http.Client{}
	}
	return &OpenFoodFactsService{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// flexFloat decodes a JSON number or numeric string. Anything else decodes to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = 0
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		v = 0
	}
	*f = flexFloat(v)
	return nil
}

// flexString decodes a JSON string, a number (kept as written) or an array of
// those joined with ", ". Anything else decodes to "".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err == nil {
			*s = flexString(strings.TrimSpace(v))
		}
	case '[':
		var parts []flexString
		if err := json.Unmarshal(b, &parts); err != nil {
			return nil
		}
		vals := make([]string, 0, len(parts))
		for _, p := range parts {
			if p != "" {
				vals = append(vals, string(p))
			}
		}
		*s = flexString(strings.Join(vals, ", "))
	case '{', 'n', 't', 'f':
	default:
		*s = flexString(b)
	}
	return nil
}

type offResponse struct {
	Status  flexFloat   `json:"status"`
	Product *offProduct `json:"product"`
}

type offProduct struct {
	ProductName         flexString   `json:"product_name"`
	Brands              flexString   `json:"brands"`
	GenericName         flexString   `json:"generic_name"`
	Categories          flexString   `json:"categories"`
	ImageURL            flexString   `json:"image_url"`
	ImageFrontURL       flexString   `json:"image_front_url"`
	ServingQuantityUnit flexString   `json:"serving_quantity_unit"`
	Nutriments          offNutriment `json:"nutriments"`
}

type offNutriment struct {
	EnergyKcal    flexFloat `json:"energy-kcal_100g"`
	EnergyKJ      flexFloat `json:"energy-kj_100g"`
	Proteins      flexFloat `json:"proteins_100g"`
	Carbohydrates flexFloat `json:"carbohydrates_100g"`
	Fat           flexFloat `json:"fat_100g"`
	Fiber         flexFloat `json:"fiber_100g"`
	Sugars        flexFloat `json:"sugars_100g"`
	Sodium        flexFloat `json:"sodium_100g"`
	Salt          flexFloat `json:"salt_100g"`
	Cholesterol   flexFloat `json:"cholesterol_100g"`
}

// LookupBarcode fetches the product for barcode. It returns ErrNotFound when
// Open Food Facts has no such product.
func (s *OpenFoodFactsService) LookupBarcode(ctx context.Context, barcode string) (*models.Food, error) {
	u := fmt.Sprintf("%s/product/%s.json", s.baseURL, url.PathEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Open Food Facts request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Open Food Facts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Open Food Facts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, barcode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open food facts API error %d: %s", resp.StatusCode, string(body))
	}

	var r offResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to parse Open Food Facts JSON: %w", err)
	}
	if r.Status != 1 || r.Product == nil {
		slog.Info("product not found in Open Food Facts", "barcode", barcode)
		return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, barcode)
	}

	return r.Product.toFood(barcode), nil
}

// toFood maps a product onto the catalog model. Every value read is a
// per-100 g nutriment so the serving basis is always 100.
func (p *offProduct) toFood(barcode string) *models.Food {
	n := p.Nutriments
	food := &models.Food{
		Name:          firstNonEmpty(string(p.ProductName), unknownProductName),
		Brand:         string(p.Brands),
		Description:   firstNonEmpty(string(p.GenericName), string(p.Categories)),
		Barcode:       barcode,
		ImageURL:      firstNonEmpty(string(p.ImageURL), string(p.ImageFrontURL)),
		Source:        models.FoodSourceOpenFoodFacts,
		ServingSize:   servingBasis,
		ServingUnit:   firstNonEmpty(string(p.ServingQuantityUnit), servingBasisUnit),
		Calories:      float64(n.EnergyKcal),
		Protein:       float64(n.Proteins),
		Carbohydrates: float64(n.Carbohydrates),
		Fat:           float64(n.Fat),
		Fiber:         float64(n.Fiber),
		Sugar:         float64(n.Sugars),
		Sodium:        float64(n.Sodium),
		Cholesterol:   float64(n.Cholesterol),
	}
	if food.Calories == 0 && n.EnergyKJ > 0 {
		food.Calories = KJToKcal(float64(n.EnergyKJ))
	}
	if food.Sodium == 0 && n.Salt > 0 {
		food.Sodium = SodiumFromSalt(float64(n.Salt))
	}
	return food
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
