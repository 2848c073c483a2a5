package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go-cosmetics/internal/models"
)

func (c *Client) ListProducts(ctx context.Context, page, limit int) (Page[models.Product], error) {
	return listPage[models.Product](ctx, c, "/products", pageQuery(page, limit))
}

// ListAllProducts needs an admin session; unlike ListProducts it includes
// inactive products.
func (c *Client) ListAllProducts(ctx context.Context, page, limit int) (Page[models.Product], error) {
	return listPage[models.Product](ctx, c, "/products/all", pageQuery(page, limit))
}

func (c *Client) SearchProducts(ctx context.Context, query string, page, limit int) (Page[models.Product], error) {
	q := pageQuery(page, limit)
	q.Set("q", query)
	return listPage[models.Product](ctx, c, "/products/search", q)
}

func (c *Client) FilterProducts(ctx context.Context, f models.ProductFilter, page, limit int) (Page[models.Product], error) {
	q := pageQuery(page, limit)
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.CategoryID != 0 {
		q.Set("category_id", strconv.Itoa(f.CategoryID))
	}
	if f.BrandID != 0 {
		q.Set("brand_id", strconv.Itoa(f.BrandID))
	}
	if !f.MinPrice.IsZero() {
		q.Set("min_price", f.MinPrice.String())
	}
	if !f.MaxPrice.IsZero() {
		q.Set("max_price", f.MaxPrice.String())
	}
	if f.Sort != "" {
		q.Set("sort", string(f.Sort))
	}
	return listPage[models.Product](ctx, c, "/products/filter", q)
}

func (c *Client) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if _, err := c.get(ctx, "/products/"+strconv.Itoa(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct posts the product as a multipart form with the image files.
func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput, images []string) (*models.Product, error) {
	var p models.Product
	if err := c.sendMultipart(ctx, http.MethodPost, "/products", productFields(in), "images", images, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int, in models.ProductInput, images []string) (*models.Product, error) {
	var p models.Product
	if err := c.sendMultipart(ctx, http.MethodPut, "/products/"+strconv.Itoa(id), productFields(in), "images", images, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, "/products/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) DeleteProductImage(ctx context.Context, productID, imageID int) (*models.Product, error) {
	var p models.Product
	path := fmt.Sprintf("/products/%d/images/%d", productID, imageID)
	if err := c.send(ctx, http.MethodDelete, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var out []models.Category
	_, err := c.get(ctx, "/categories", activeQuery(activeOnly), &out)
	return out, err
}

func (c *Client) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	var out models.Category
	if _, err := c.get(ctx, "/categories/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in models.ReferenceInput) (*models.Category, error) {
	var out models.Category
	if err := c.send(ctx, http.MethodPost, "/categories", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int, in models.ReferenceInput) (*models.Category, error) {
	var out models.Category
	if err := c.send(ctx, http.MethodPut, "/categories/"+strconv.Itoa(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, "/categories/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) ListBrands(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	var out []models.Brand
	_, err := c.get(ctx, "/brands", activeQuery(activeOnly), &out)
	return out, err
}

func (c *Client) ListBrandsPaged(ctx context.Context, page, limit int) (Page[models.Brand], error) {
	return listPage[models.Brand](ctx, c, "/brands/paged", pageQuery(page, limit))
}

func (c *Client) CreateBrand(ctx context.Context, in models.ReferenceInput) (*models.Brand, error) {
	var out models.Brand
	if err := c.send(ctx, http.MethodPost, "/brands", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBrand(ctx context.Context, id int, in models.ReferenceInput) (*models.Brand, error) {
	var out models.Brand
	if err := c.send(ctx, http.MethodPut, "/brands/"+strconv.Itoa(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBrand(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, "/brands/"+strconv.Itoa(id), nil, nil)
}

func listPage[T any](ctx context.Context, c *Client, path string, q url.Values) (Page[T], error) {
	var items []T
	meta, err := c.get(ctx, path, q, &items)
	if err != nil {
		return Page[T]{}, err
	}
	page := Page[T]{Items: items}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

func activeQuery(activeOnly bool) url.Values {
	if !activeOnly {
		return nil
	}
	return url.Values{"active": {"true"}}
}

// productFields flattens the set fields of in into form values.
func productFields(in models.ProductInput) map[string]string {
	fields := map[string]string{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = in.Price.String()
	}
	ints := map[string]*int{
		"stock":       in.Stock,
		"discount":    in.Discount,
		"category_id": in.CategoryID,
		"brand_id":    in.BrandID,
	}
	for k, v := range ints {
		if v != nil {
			fields[k] = strconv.Itoa(*v)
		}
	}
	if in.Active != nil {
		fields["active"] = strconv.FormatBool(*in.Active)
	}
	return fields
}
