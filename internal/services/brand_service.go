package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go-cosmetics/internal/models"
)

type BrandService struct {
	mu         sync.RWMutex
	brands map[int]*models.Brand
	nextID     int

	// usage reports how many products reference a brand
	usage func(id int) int
}

func NewBrandService() *BrandService {
	return &BrandService{
		brands: make(map[int]*models.Brand),
		nextID:     1,
	}
}

func (s *BrandService) Create(in models.ReferenceInput) (*models.Brand, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(*in.Name, 0) {
		return nil, fmt.Errorf("brand %q: %w", *in.Name, ErrConflict)
	}
	now := time.Now()
	c := &models.Brand{ID: s.nextID, Active: true, CreatedAt: now, UpdatedAt: now}
	applyBrandInput(c, in)
	s.brands[c.ID] = c
	s.nextID++

	out := *c
	return &out, nil
}

func (s *BrandService) Update(id int, in models.ReferenceInput) (*models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.brands[id]
	if !exists {
		return nil, fmt.Errorf("brand %d: %w", id, ErrNotFound)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		if s.nameTaken(*in.Name, id) {
			return nil, fmt.Errorf("brand %q: %w", *in.Name, ErrConflict)
		}
	}
	applyBrandInput(c, in)
	c.UpdatedAt = time.Now()

	out := *c
	return &out, nil
}

// Delete refuses brands still referenced by products.
func (s *BrandService) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.brands[id]; !exists {
		return fmt.Errorf("brand %d: %w", id, ErrNotFound)
	}
	if s.usage != nil && s.usage(id) > 0 {
		return fmt.Errorf("brand %d is used by products: %w", id, ErrConflict)
	}
	delete(s.brands, id)
	return nil
}

func (s *BrandService) Get(id int) (*models.Brand, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.brands[id]
	if !exists {
		return nil, false
	}
	out := *c
	return &out, true
}

func (s *BrandService) List(activeOnly bool) []models.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Brand, 0, len(s.brands))
	for _, c := range s.brands {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b models.Brand) int { return a.ID - b.ID })
	return out
}

func (s *BrandService) nameTaken(name string, exceptID int) bool {
	for _, c := range s.brands {
		if c.ID != exceptID && strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func applyBrandInput(c *models.Brand, in models.ReferenceInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
}

// ListPaged backs the paged brand listing of the admin console.
func (s *BrandService) ListPaged(page, limit int) ([]models.Brand, int) {
	return paginate(s.List(false), page, limit)
}
