package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go-cosmetics/internal/models"
)

type CategoryService struct {
	mu         sync.RWMutex
	categories map[int]*models.Category
	nextID     int

	// usage reports how many products reference a category
	usage func(id int) int
}

func NewCategoryService() *CategoryService {
	return &CategoryService{
		categories: make(map[int]*models.Category),
		nextID:     1,
	}
}

func (s *CategoryService) Create(in models.ReferenceInput) (*models.Category, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(*in.Name, 0) {
		return nil, fmt.Errorf("category %q: %w", *in.Name, ErrConflict)
	}
	now := time.Now()
	c := &models.Category{ID: s.nextID, Active: true, CreatedAt: now, UpdatedAt: now}
	applyCategoryInput(c, in)
	s.categories[c.ID] = c
	s.nextID++

	out := *c
	return &out, nil
}

func (s *CategoryService) Update(id int, in models.ReferenceInput) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.categories[id]
	if !exists {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		if s.nameTaken(*in.Name, id) {
			return nil, fmt.Errorf("category %q: %w", *in.Name, ErrConflict)
		}
	}
	applyCategoryInput(c, in)
	c.UpdatedAt = time.Now()

	out := *c
	return &out, nil
}

// Delete refuses categories still referenced by products.
func (s *CategoryService) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[id]; !exists {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if s.usage != nil && s.usage(id) > 0 {
		return fmt.Errorf("category %d is used by products: %w", id, ErrConflict)
	}
	delete(s.categories, id)
	return nil
}

func (s *CategoryService) Get(id int) (*models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.categories[id]
	if !exists {
		return nil, false
	}
	out := *c
	return &out, true
}

func (s *CategoryService) List(activeOnly bool) []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b models.Category) int { return a.ID - b.ID })
	return out
}

func (s *CategoryService) nameTaken(name string, exceptID int) bool {
	for _, c := range s.categories {
		if c.ID != exceptID && strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func applyCategoryInput(c *models.Category, in models.ReferenceInput) {
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
