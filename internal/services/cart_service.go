package services

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go-cosmetics/internal/models"
)

type CartService struct {
	mu        sync.RWMutex
	items     map[int]*models.CartItem // item_id -> item
	userItems map[int][]int            // user_id -> item_ids in insertion order
	nextID    int

	products *ProductService
}

func NewCartService(products *ProductService) *CartService {
	return &CartService{
		items:     make(map[int]*models.CartItem),
		userItems: make(map[int][]int),
		nextID:    1,
		products:  products,
	}
}

// List returns the user's cart lines with a fresh product snapshot. Lines whose
// product was deleted are dropped.
func (s *CartService) List(userID int) []models.CartItem {
	s.mu.RLock()
	ids := slices.Clone(s.userItems[userID])
	lines := make([]models.CartItem, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, *s.items[id])
	}
	s.mu.RUnlock()

	out := lines[:0]
	for _, line := range lines {
		product, ok := s.products.GetProductByID(line.ProductID)
		if !ok {
			continue
		}
		line.Product = product
		out = append(out, line)
	}
	return out
}

// Add merges into an existing line for the same product or opens a new one.
func (s *CartService) Add(userID, productID, quantity int) (models.AddToCartResult, error) {
	if quantity < 1 {
		return models.AddToCartResult{}, ErrInvalidQuantity
	}
	product, ok := s.products.GetProductByID(productID)
	if !ok {
		return models.AddToCartResult{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if !product.Active {
		return models.AddToCartResult{}, fmt.Errorf("product %s is not for sale: %w", product.Name, ErrConflict)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, id := range s.userItems[userID] {
		item := s.items[id]
		if item.ProductID != productID {
			continue
		}
		if item.Quantity+quantity > product.Stock {
			return models.AddToCartResult{}, fmt.Errorf("%w for product %s", ErrInsufficientStock, product.Name)
		}
		item.Quantity += quantity
		item.UpdatedAt = now
		out := *item
		out.Product = product
		return models.AddToCartResult{Item: out, NewLine: false}, nil
	}

	if quantity > product.Stock {
		return models.AddToCartResult{}, fmt.Errorf("%w for product %s", ErrInsufficientStock, product.Name)
	}
	item := &models.CartItem{
		ID:        s.nextID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   now,
		UpdatedAt: now,
	}
	s.nextID++
	s.items[item.ID] = item
	s.userItems[userID] = append(s.userItems[userID], item.ID)

	out := *item
	out.Product = product
	return models.AddToCartResult{Item: out, NewLine: true}, nil
}

func (s *CartService) UpdateQuantity(userID, itemID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}
	product, ok := s.products.GetProductByID(item.ProductID)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
	}
	if quantity > product.Stock {
		return nil, fmt.Errorf("%w for product %s", ErrInsufficientStock, product.Name)
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()

	out := *item
	out.Product = product
	return &out, nil
}

func (s *CartService) Remove(userID, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedItem(userID, itemID); err != nil {
		return err
	}
	delete(s.items, itemID)
	s.userItems[userID] = slices.DeleteFunc(s.userItems[userID], func(id int) bool { return id == itemID })
	return nil
}

func (s *CartService) Clear(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.userItems[userID] {
		delete(s.items, id)
	}
	delete(s.userItems, userID)
}

// RemoveProducts drops the lines for the given products, used after checkout.
func (s *CartService) RemoveProducts(userID int, productIDs []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userItems[userID] = slices.DeleteFunc(s.userItems[userID], func(id int) bool {
		if slices.Contains(productIDs, s.items[id].ProductID) {
			delete(s.items, id)
			return true
		}
		return false
	})
}

// Count is the number of distinct products in the cart.
func (s *CartService) Count(userID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.userItems[userID])
}

func (s *CartService) ownedItem(userID, itemID int) (*models.CartItem, error) {
	item, exists := s.items[itemID]
	if !exists || item.UserID != userID {
		return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	return item, nil
}
