package storefront

import (
	"context"
	"errors"
	"slices"

	"go-cosmetics/internal/models"
)

// ErrAdminRequired is shown inline when a non-admin tries a destructive
// action. The API rejects the call anyway.
var ErrAdminRequired = errors.New("admin role required")

const adminRequiredMessage = "Bạn không có quyền thực hiện thao tác này"

// BulkResult reports a multi-row delete. Only Deleted rows may be removed
// from the table.
type BulkResult struct {
	Deleted []int
	Failed  map[int]error
}

// AdminConsole backs the /admin screens.
type AdminConsole struct {
	client  *Client
	session *Session

	Products   ListView[models.Product]
	Categories ListView[models.Category]
	Brands     ListView[models.Brand]
	Users      ListView[models.User]
	Orders     ListView[models.Order]
}

func NewAdminConsole(client *Client, session *Session) *AdminConsole {
	activeLabel := func(active bool) string {
		if active {
			return "active"
		}
		return "inactive"
	}
	return &AdminConsole{
		client:  client,
		session: session,
		Products: ListView[models.Product]{
			Search: func(p models.Product) string { return p.Name },
			Status: func(p models.Product) string { return activeLabel(p.Active) },
			Sorts: map[string]func(a, b models.Product) int{
				"name":       ByString(func(p models.Product) string { return p.Name }),
				"price":      func(a, b models.Product) int { return a.Price.Cmp(b.Price) },
				"stock":      By(func(p models.Product) int { return p.Stock }),
				"created_at": func(a, b models.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
			},
		},
		Categories: ListView[models.Category]{
			Search: func(c models.Category) string { return c.Name },
			Status: func(c models.Category) string { return activeLabel(c.Active) },
			Sorts: map[string]func(a, b models.Category) int{
				"name": ByString(func(c models.Category) string { return c.Name }),
				"id":   By(func(c models.Category) int { return c.ID }),
			},
		},
		Brands: ListView[models.Brand]{
			Search: func(b models.Brand) string { return b.Name },
			Status: func(b models.Brand) string { return activeLabel(b.Active) },
			Sorts: map[string]func(a, b models.Brand) int{
				"name": ByString(func(b models.Brand) string { return b.Name }),
				"id":   By(func(b models.Brand) int { return b.ID }),
			},
		},
		Users: ListView[models.User]{
			Search: func(u models.User) string { return u.Username + " " + u.FullName + " " + u.Email },
			Status: func(u models.User) string { return activeLabel(u.Active) },
			Sorts: map[string]func(a, b models.User) int{
				"username":   ByString(func(u models.User) string { return u.Username }),
				"email":      ByString(func(u models.User) string { return u.Email }),
				"created_at": func(a, b models.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
			},
		},
		Orders: ListView[models.Order]{
			Search: func(o models.Order) string { return o.Code + " " + o.RecipientName + " " + o.Phone },
			Status: func(o models.Order) string { return string(o.Status) },
			Sorts: map[string]func(a, b models.Order) int{
				"total":      func(a, b models.Order) int { return a.Total.Cmp(b.Total) },
				"created_at": func(a, b models.Order) int { return a.CreatedAt.Compare(b.CreatedAt) },
			},
		},
	}
}

// AllProducts pages through the catalogue, inactive products included.
func (a *AdminConsole) AllProducts(ctx context.Context) ([]models.Product, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	var out []models.Product
	for page := 1; ; page++ {
		p, err := a.client.ListAllProducts(ctx, page, 100)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Items...)
		if !p.Meta.HasNext {
			return out, nil
		}
	}
}

func (a *AdminConsole) requireAdmin() error {
	if !a.session.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func (a *AdminConsole) DeleteProduct(ctx context.Context, id int) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.client.DeleteProduct(ctx, id)
}

func (a *AdminConsole) DeleteCategory(ctx context.Context, id int) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.client.DeleteCategory(ctx, id)
}

func (a *AdminConsole) DeleteBrand(ctx context.Context, id int) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.client.DeleteBrand(ctx, id)
}

func (a *AdminConsole) DeleteUser(ctx context.Context, id int) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.client.DeleteUser(ctx, id)
}

func (a *AdminConsole) DeleteProducts(ctx context.Context, ids []int) (BulkResult, error) {
	return a.bulkDelete(ctx, ids, a.client.DeleteProduct)
}

func (a *AdminConsole) DeleteCategories(ctx context.Context, ids []int) (BulkResult, error) {
	return a.bulkDelete(ctx, ids, a.client.DeleteCategory)
}

func (a *AdminConsole) DeleteBrands(ctx context.Context, ids []int) (BulkResult, error) {
	return a.bulkDelete(ctx, ids, a.client.DeleteBrand)
}

func (a *AdminConsole) DeleteUsers(ctx context.Context, ids []int) (BulkResult, error) {
	return a.bulkDelete(ctx, ids, a.client.DeleteUser)
}

// bulkDelete issues one request per id and keeps going past failures.
func (a *AdminConsole) bulkDelete(ctx context.Context, ids []int, del func(context.Context, int) error) (BulkResult, error) {
	if err := a.requireAdmin(); err != nil {
		return BulkResult{}, err
	}
	res := BulkResult{Failed: map[int]error{}}
	for _, id := range ids {
		if err := del(ctx, id); err != nil {
			res.Failed[id] = err
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}
	return res, nil
}

// DropDeleted removes the rows the server confirmed as deleted.
func DropDeleted[T any](rows []T, id func(T) int, deleted []int) []T {
	return slices.DeleteFunc(slices.Clone(rows), func(r T) bool {
		return slices.Contains(deleted, id(r))
	})
}

// UpdateProduct sends only the fields that differ from orig. With no
// changes and no new images the server is not called.
func (a *AdminConsole) UpdateProduct(ctx context.Context, orig, edited models.Product, images []string) (*models.Product, error) {
	in := ProductChanges(orig, edited)
	if in == (models.ProductInput{}) && len(images) == 0 {
		return &orig, nil
	}
	return a.client.UpdateProduct(ctx, orig.ID, in, images)
}

func (a *AdminConsole) UpdateCategory(ctx context.Context, orig, edited models.Category) (*models.Category, error) {
	in := ReferenceChanges(orig.Name, orig.Description, orig.Active, edited.Name, edited.Description, edited.Active)
	if in == (models.ReferenceInput{}) {
		return &orig, nil
	}
	return a.client.UpdateCategory(ctx, orig.ID, in)
}

func (a *AdminConsole) UpdateBrand(ctx context.Context, orig, edited models.Brand) (*models.Brand, error) {
	in := ReferenceChanges(orig.Name, orig.Description, orig.Active, edited.Name, edited.Description, edited.Active)
	if in == (models.ReferenceInput{}) {
		return &orig, nil
	}
	return a.client.UpdateBrand(ctx, orig.ID, in)
}

// UpdateUser sends the changed fields; a non-empty password is always sent.
func (a *AdminConsole) UpdateUser(ctx context.Context, orig, edited models.User, password string) (*models.User, error) {
	in := UserChanges(orig, edited)
	if password != "" {
		in.Password = &password
	}
	if isEmptyUserInput(in) {
		return &orig, nil
	}
	return a.client.UpdateUser(ctx, orig.ID, in)
}

func (a *AdminConsole) UpdateOrderStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	return a.client.UpdateOrderStatus(ctx, id, status)
}

func (a *AdminConsole) UpdatePaymentStatus(ctx context.Context, id int, status models.PaymentStatus) (*models.Order, error) {
	return a.client.UpdatePaymentStatus(ctx, id, status)
}

func ProductChanges(orig, edited models.Product) models.ProductInput {
	var in models.ProductInput
	if edited.Name != orig.Name {
		in.Name = &edited.Name
	}
	if edited.Description != orig.Description {
		in.Description = &edited.Description
	}
	if !edited.Price.Equal(orig.Price) {
		in.Price = &edited.Price
	}
	if edited.Stock != orig.Stock {
		in.Stock = &edited.Stock
	}
	if edited.Discount != orig.Discount {
		in.Discount = &edited.Discount
	}
	if edited.Active != orig.Active {
		in.Active = &edited.Active
	}
	if edited.CategoryID != orig.CategoryID {
		in.CategoryID = &edited.CategoryID
	}
	if edited.BrandID != orig.BrandID {
		in.BrandID = &edited.BrandID
	}
	return in
}

func ReferenceChanges(name, desc string, active bool, newName, newDesc string, newActive bool) models.ReferenceInput {
	var in models.ReferenceInput
	if newName != name {
		in.Name = &newName
	}
	if newDesc != desc {
		in.Description = &newDesc
	}
	if newActive != active {
		in.Active = &newActive
	}
	return in
}

func UserChanges(orig, edited models.User) models.UserInput {
	var in models.UserInput
	if edited.Username != orig.Username {
		in.Username = &edited.Username
	}
	if edited.FullName != orig.FullName {
		in.FullName = &edited.FullName
	}
	if edited.Email != orig.Email {
		in.Email = &edited.Email
	}
	if edited.Phone != orig.Phone {
		in.Phone = &edited.Phone
	}
	if edited.Active != orig.Active {
		in.Active = &edited.Active
	}
	if !slices.Equal(edited.Roles, orig.Roles) {
		in.Roles = slices.Clone(edited.Roles)
	}
	return in
}

func isEmptyUserInput(in models.UserInput) bool {
	return in.Username == nil && in.FullName == nil && in.Email == nil && in.Phone == nil &&
		in.Password == nil && in.Active == nil && len(in.Roles) == 0
}
