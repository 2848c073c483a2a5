package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"go-cosmetics/internal/models"
)

type ProductService struct {
	mu          sync.RWMutex
	products    map[int]*models.Product
	nextID      int
	nextImageID int

	categories *CategoryService
	brands     *BrandService
}

func NewProductService(categories *CategoryService, brands *BrandService) *ProductService {
	s := &ProductService{
		products:    make(map[int]*models.Product),
		nextID:      1,
		nextImageID: 1,
		categories:  categories,
		brands:      brands,
	}
	categories.usage = s.countByCategory
	brands.usage = s.countByBrand
	return s
}

func (s *ProductService) InitSampleData() {
	type sample struct {
		name     string
		price    int64
		stock    int
		discount int
		category string
		brand    string
	}
	samples := []sample{
		{"Sữa rửa mặt dịu nhẹ", 185000, 120, 0, "Chăm sóc da", "Cetaphil"},
		{"Kem chống nắng SPF50+", 420000, 80, 10, "Chống nắng", "La Roche-Posay"},
		{"Son kem lì Velvet", 250000, 60, 0, "Trang điểm", "Maybelline"},
		{"Nước tẩy trang Micellar", 210000, 150, 15, "Chăm sóc da", "Bioderma"},
		{"Serum Vitamin C", 560000, 40, 0, "Chăm sóc da", "Klairs"},
		{"Phấn phủ kiềm dầu", 320000, 55, 5, "Trang điểm", "Innisfree"},
		{"Dầu gội thảo dược", 150000, 200, 0, "Chăm sóc tóc", "Thorakao"},
		{"Mặt nạ ngủ dưỡng ẩm", 275000, 0, 0, "Chăm sóc da", "Laneige"},
	}

	catIDs := map[string]int{}
	brandIDs := map[string]int{}
	for _, sm := range samples {
		if _, ok := catIDs[sm.category]; !ok {
			c, _ := s.categories.Create(models.ReferenceInput{Name: &sm.category})
			catIDs[sm.category] = c.ID
		}
		if _, ok := brandIDs[sm.brand]; !ok {
			b, _ := s.brands.Create(models.ReferenceInput{Name: &sm.brand})
			brandIDs[sm.brand] = b.ID
		}
		price := decimal.NewFromInt(sm.price)
		desc := "Sản phẩm " + sm.name + " chính hãng " + sm.brand
		catID, brandID := catIDs[sm.category], brandIDs[sm.brand]
		stock, discount := sm.stock, sm.discount
		name := sm.name
		_, _ = s.Create(models.ProductInput{
			Name:        &name,
			Description: &desc,
			Price:       &price,
			Stock:       &stock,
			Discount:    &discount,
			CategoryID:  &catID,
			BrandID:     &brandID,
		})
	}
}

func (s *ProductService) Create(in models.ProductInput) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Price == nil {
		return nil, fmt.Errorf("%w: price is required", ErrInvalidInput)
	}
	if err := s.validateRefs(in); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &models.Product{Active: true, Images: []models.ProductImage{}, CreatedAt: now}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}
	p.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	s.products[p.ID] = p

	out := cloneProduct(p)
	return &out, nil
}

// Update applies only the fields present in the input.
func (s *ProductService) Update(id int, in models.ProductInput) (*models.Product, error) {
	if err := s.validateRefs(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	updated := cloneProduct(p)
	if err := applyProductInput(&updated, in); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now()
	*p = updated

	out := cloneProduct(p)
	return &out, nil
}

func (s *ProductService) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	delete(s.products, id)
	return nil
}

func (s *ProductService) GetProductByID(id int) (*models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, false
	}
	out := cloneProduct(product)
	return &out, true
}

// GetAllProducts returns one page of the active catalogue ordered by id.
func (s *ProductService) GetAllProducts(page, limit int) ([]models.Product, int) {
	return s.Filter(models.ProductFilter{ActiveOnly: true}, page, limit)
}

// ListAllProducts is the admin view of the catalogue, inactive products
// included.
func (s *ProductService) ListAllProducts(page, limit int) ([]models.Product, int) {
	return s.Filter(models.ProductFilter{}, page, limit)
}

func (s *ProductService) SearchProducts(query string, page, limit int) ([]models.Product, int) {
	return s.Filter(models.ProductFilter{Query: query, ActiveOnly: true}, page, limit)
}

func (s *ProductService) Filter(f models.ProductFilter, page, limit int) ([]models.Product, int) {
	s.mu.RLock()
	results := make([]models.Product, 0, len(s.products))
	query := strings.ToLower(strings.TrimSpace(f.Query))
	for _, product := range s.products {
		matchesQuery := query == "" ||
			strings.Contains(strings.ToLower(product.Name), query) ||
			strings.Contains(strings.ToLower(product.Description), query)
		matchesCategory := f.CategoryID == 0 || product.CategoryID == f.CategoryID
		matchesBrand := f.BrandID == 0 || product.BrandID == f.BrandID
		price := product.UnitPrice()
		matchesPrice := (f.MinPrice.IsZero() || price.GreaterThanOrEqual(f.MinPrice)) &&
			(f.MaxPrice.IsZero() || price.LessThanOrEqual(f.MaxPrice))
		matchesActive := !f.ActiveOnly || product.Active

		if matchesQuery && matchesCategory && matchesBrand && matchesPrice && matchesActive {
			results = append(results, cloneProduct(product))
		}
	}
	s.mu.RUnlock()

	sortProducts(results, f.Sort)
	return paginate(results, page, limit)
}

// Reserve decrements stock for every line or for none of them.
func (s *ProductService) Reserve(quantities map[int]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for productID, quantity := range quantities {
		product, exists := s.products[productID]
		if !exists {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		if !product.Active {
			return fmt.Errorf("product %s is not for sale: %w", product.Name, ErrConflict)
		}
		if product.Stock < quantity {
			return fmt.Errorf("%w for product %s", ErrInsufficientStock, product.Name)
		}
	}

	now := time.Now()
	for productID, quantity := range quantities {
		s.products[productID].Stock -= quantity
		s.products[productID].UpdatedAt = now
	}
	return nil
}

// Release returns stock taken by Reserve. Deleted products are skipped.
func (s *ProductService) Release(quantities map[int]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for productID, quantity := range quantities {
		if product, exists := s.products[productID]; exists {
			product.Stock += quantity
			product.UpdatedAt = now
		}
	}
}

// AttachImages appends stored image paths. The first image of a product
// without a primary image becomes primary.
func (s *ProductService) AttachImages(id int, paths []string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	_, hasPrimary := p.PrimaryImage()
	for _, path := range paths {
		p.Images = append(p.Images, models.ProductImage{
			ID:        s.nextImageID,
			Path:      path,
			IsPrimary: !hasPrimary,
		})
		hasPrimary = true
		s.nextImageID++
	}
	p.UpdatedAt = time.Now()

	out := cloneProduct(p)
	return &out, nil
}

// RemoveImage drops an image and returns its path so the caller can delete
// the file. Removing the primary image promotes the next one.
func (s *ProductService) RemoveImage(productID, imageID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[productID]
	if !exists {
		return "", fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	idx := slices.IndexFunc(p.Images, func(img models.ProductImage) bool { return img.ID == imageID })
	if idx < 0 {
		return "", fmt.Errorf("image %d: %w", imageID, ErrNotFound)
	}
	removed := p.Images[idx]
	p.Images = slices.Delete(p.Images, idx, idx+1)
	if removed.IsPrimary && len(p.Images) > 0 {
		p.Images[0].IsPrimary = true
	}
	p.UpdatedAt = time.Now()
	return removed.Path, nil
}

func (s *ProductService) SetPrimaryImage(productID, imageID int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[productID]
	if !exists {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if !slices.ContainsFunc(p.Images, func(img models.ProductImage) bool { return img.ID == imageID }) {
		return nil, fmt.Errorf("image %d: %w", imageID, ErrNotFound)
	}
	for i := range p.Images {
		p.Images[i].IsPrimary = p.Images[i].ID == imageID
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *ProductService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// LowStock counts active products with stock at or below the threshold.
func (s *ProductService) LowStock(threshold int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.products {
		if p.Active && p.Stock <= threshold {
			n++
		}
	}
	return n
}

func (s *ProductService) All() []models.Product {
	products, _ := s.Filter(models.ProductFilter{}, 1, 0)
	return products
}

func (s *ProductService) validateRefs(in models.ProductInput) error {
	if in.CategoryID != nil && *in.CategoryID != 0 {
		if _, ok := s.categories.Get(*in.CategoryID); !ok {
			return fmt.Errorf("%w: category %d does not exist", ErrInvalidInput, *in.CategoryID)
		}
	}
	if in.BrandID != nil && *in.BrandID != 0 {
		if _, ok := s.brands.Get(*in.BrandID); !ok {
			return fmt.Errorf("%w: brand %d does not exist", ErrInvalidInput, *in.BrandID)
		}
	}
	return nil
}

func (s *ProductService) countByCategory(id int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n
}

func (s *ProductService) countByBrand(id int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.products {
		if p.BrandID == id {
			n++
		}
	}
	return n
}

func applyProductInput(p *models.Product, in models.ProductInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
		}
		p.Stock = *in.Stock
	}
	if in.Discount != nil {
		if *in.Discount < 0 || *in.Discount > 100 {
			return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidInput)
		}
		p.Discount = *in.Discount
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.BrandID != nil {
		p.BrandID = *in.BrandID
	}
	return nil
}

func cloneProduct(p *models.Product) models.Product {
	out := *p
	out.Images = slices.Clone(p.Images)
	if out.Images == nil {
		out.Images = []models.ProductImage{}
	}
	return out
}

func sortProducts(products []models.Product, order models.ProductSort) {
	// id order first so ties stay deterministic under the stable sorts below
	slices.SortFunc(products, func(a, b models.Product) int { return a.ID - b.ID })

	switch order {
	case models.SortPriceAsc:
		slices.SortStableFunc(products, func(a, b models.Product) int { return a.UnitPrice().Cmp(b.UnitPrice()) })
	case models.SortPriceDesc:
		slices.SortStableFunc(products, func(a, b models.Product) int { return b.UnitPrice().Cmp(a.UnitPrice()) })
	case models.SortNameAsc:
		slices.SortStableFunc(products, func(a, b models.Product) int { return strings.Compare(a.Name, b.Name) })
	case models.SortNewest:
		slices.Reverse(products)
	}
}
