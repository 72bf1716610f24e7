package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"nutrition-tracker/models"

	"gorm.io/gorm"
)

// memFoodRepo is an in-memory FoodRepository with injectable failures.
type memFoodRepo struct {
	mu      sync.Mutex
	foods   map[uint]*models.Food
	nextID  uint
	saveErr error
	findErr error
	saves   int
}

func newMemFoodRepo(seed ...models.Food) *memFoodRepo {
	r := &memFoodRepo{foods: map[uint]*models.Food{}}
	for i := range seed {
		f := seed[i]
		_ = r.Save(context.Background(), &f)
	}
	r.saves = 0
	return r
}

func (r *memFoodRepo) FindByID(_ context.Context, id uint) (*models.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.foods[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memFoodRepo) FindByBarcode(_ context.Context, barcode string) (*models.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, f := range r.foods {
		if f.Barcode == barcode {
			cp := *f
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memFoodRepo) FindByFdcID(_ context.Context, fdcID string) (*models.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.foods {
		if f.FdcID == fdcID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memFoodRepo) SearchByName(_ context.Context, name string) ([]models.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Food
	for _, f := range r.foods {
		if strings.Contains(strings.ToLower(f.Name), strings.ToLower(name)) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *memFoodRepo) FindAll(_ context.Context) ([]models.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Food, 0, len(r.foods))
	for _, f := range r.foods {
		out = append(out, *f)
	}
	return out, nil
}

func (r *memFoodRepo) Save(_ context.Context, f *models.Food) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	if f.ID == 0 {
		r.nextID++
		f.ID = r.nextID
	}
	cp := *f
	r.foods[f.ID] = &cp
	return nil
}

func (r *memFoodRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.foods[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.foods, id)
	return nil
}

// stubProvider is a BarcodeProvider and FoodDatabase driven by function fields.
type stubProvider struct {
	mu      sync.Mutex
	calls   int
	lookup  func(ctx context.Context, barcode string) (*models.Food, error)
	search  func(ctx context.Context, q string) ([]models.Food, error)
	getFood func(ctx context.Context, id string) (*models.Food, error)
}

func (p *stubProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *stubProvider) hit() {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
}

func (p *stubProvider) LookupBarcode(ctx context.Context, barcode string) (*models.Food, error) {
	p.hit()
	if p.lookup == nil {
		return nil, errors.New("unexpected call")
	}
	return p.lookup(ctx, barcode)
}

func (p *stubProvider) SearchFoods(ctx context.Context, q string) ([]models.Food, error) {
	p.hit()
	if p.search == nil {
		return nil, errors.New("unexpected call")
	}
	return p.search(ctx, q)
}

func (p *stubProvider) GetFood(ctx context.Context, id string) (*models.Food, error) {
	p.hit()
	if p.getFood == nil {
		return nil, errors.New("unexpected call")
	}
	return p.getFood(ctx, id)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []MealEvent
	users  []uint
}

func (p *recordingPublisher) Broadcast(userID uint, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, userID)
	if evt, ok := payload.(MealEvent); ok {
		p.events = append(p.events, evt)
	}
}
