package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductImage struct {
	ID        int    `json:"id"`
	Path      string `json:"path"`
	IsPrimary bool   `json:"is_primary"`
}

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Discount    int             `json:"discount"`
	Active      bool            `json:"active"`
	CategoryID  int             `json:"category_id"`
	BrandID     int             `json:"brand_id"`
	Images      []ProductImage  `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UnitPrice is the sale price after the percentage discount, rounded to whole
// currency units.
func (p Product) UnitPrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price
	}
	if p.Discount >= 100 {
		return decimal.Zero
	}
	factor := decimal.NewFromInt(int64(100 - p.Discount)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(0)
}

// PrimaryImage returns the image flagged as primary, falling back to the first
// image. ok is false when the product has no images.
func (p Product) PrimaryImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return ProductImage{}, false
}

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Brand struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductInput carries create/update fields. Nil pointers are left untouched
// on update.
type ProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Discount    *int             `json:"discount,omitempty"`
	Active      *bool            `json:"active,omitempty"`
	CategoryID  *int             `json:"category_id,omitempty"`
	BrandID     *int             `json:"brand_id,omitempty"`
}

type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortNameAsc   ProductSort = "name_asc"
)

type ProductFilter struct {
	Query      string
	CategoryID int
	BrandID    int
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
	ActiveOnly bool
	Sort       ProductSort
}

// ReferenceInput is the create/update payload shared by categories and brands.
type ReferenceInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}
