package services

import (
	"fmt"
	"slices"
	"sync"

	"go-cosmetics/internal/models"
)

type WishlistService struct {
	mu       sync.RWMutex
	lists    map[int][]int // user_id -> product_ids
	products *ProductService
}

func NewWishlistService(products *ProductService) *WishlistService {
	return &WishlistService{lists: make(map[int][]int), products: products}
}

func (s *WishlistService) List(userID int) []models.Product {
	s.mu.RLock()
	ids := slices.Clone(s.lists[userID])
	s.mu.RUnlock()

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products.GetProductByID(id); ok {
			out = append(out, *p)
		}
	}
	return out
}

// Add is idempotent.
func (s *WishlistService) Add(userID, productID int) error {
	if _, ok := s.products.GetProductByID(productID); !ok {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.lists[userID], productID) {
		s.lists[userID] = append(s.lists[userID], productID)
	}
	return nil
}

func (s *WishlistService) Remove(userID, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.lists[userID], productID) {
		return fmt.Errorf("wishlist product %d: %w", productID, ErrNotFound)
	}
	s.lists[userID] = slices.DeleteFunc(s.lists[userID], func(id int) bool { return id == productID })
	return nil
}
