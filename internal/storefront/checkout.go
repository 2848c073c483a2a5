package storefront

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/pricing"
)

// RouteOrderConfirmation is where a non-redirect order lands.
const RouteOrderConfirmation = "/order-confirmation"

var phonePattern = regexp.MustCompile(`^(0|\+84)[35789]\d{8}$`)

// FieldErrors maps a form field to the message shown under it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

// AddressSelector is the province > district > ward cascade. Each selection
// clears everything below it and fetches the next level again.
type AddressSelector struct {
	lookup AddressLookup

	mu        sync.RWMutex
	provinces []models.Province
	districts []models.District
	wards     []models.Ward
	province  int
	district  int
	ward      int
}

func NewAddressSelector(lookup AddressLookup) *AddressSelector {
	return &AddressSelector{lookup: lookup}
}

func (a *AddressSelector) LoadProvinces(ctx context.Context) ([]models.Province, error) {
	provinces, err := a.lookup.Provinces(ctx)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.provinces = provinces
	a.mu.Unlock()
	return provinces, nil
}

func (a *AddressSelector) SelectProvince(ctx context.Context, code int) error {
	a.mu.Lock()
	a.province, a.district, a.ward = code, 0, 0
	a.districts, a.wards = nil, nil
	a.mu.Unlock()
	if code == 0 {
		return nil
	}

	districts, err := a.lookup.Districts(ctx, code)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.province == code {
		a.districts = districts
	}
	return nil
}

func (a *AddressSelector) SelectDistrict(ctx context.Context, code int) error {
	a.mu.Lock()
	a.district, a.ward = code, 0
	a.wards = nil
	a.mu.Unlock()
	if code == 0 {
		return nil
	}

	wards, err := a.lookup.Wards(ctx, code)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.district == code {
		a.wards = wards
	}
	return nil
}

func (a *AddressSelector) SelectWard(code int) {
	a.mu.Lock()
	a.ward = code
	a.mu.Unlock()
}

// Selection returns the chosen province, district and ward codes; zero means
// nothing is selected at that level.
func (a *AddressSelector) Selection() (province, district, ward int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.province, a.district, a.ward
}

func (a *AddressSelector) Provinces() []models.Province {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Province(nil), a.provinces...)
}

func (a *AddressSelector) Districts() []models.District {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.District(nil), a.districts...)
}

func (a *AddressSelector) Wards() []models.Ward {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Ward(nil), a.wards...)
}

// CheckoutForm holds what the shopper typed on the checkout page.
type CheckoutForm struct {
	RecipientName   string
	Phone           string
	AddressDetail   string
	PaymentMethodID int
	Note            string
}

// OrderPlacement is the outcome of PlaceOrder: either an external payment URL
// to follow, or the in-app route to show next.
type OrderPlacement struct {
	Order       models.Order
	RedirectURL string
	Route       string
}

// CheckoutFlow is the checkout page. Its lines come from the items the cart
// page stored on the way in.
type CheckoutFlow struct {
	client  *Client
	address *AddressSelector
	items   []models.CartItem
}

func NewCheckoutFlow(client *Client, address *AddressSelector) *CheckoutFlow {
	return &CheckoutFlow{
		client:  client,
		address: address,
		items:   client.Store().CheckoutItems(),
	}
}

func (f *CheckoutFlow) Items() []models.CartItem {
	return append([]models.CartItem(nil), f.items...)
}

func (f *CheckoutFlow) Address() *AddressSelector { return f.address }

// Totals prices the items from their product snapshots. Call LoadProducts
// first when the items came from storage that may lack them.
func (f *CheckoutFlow) Totals() pricing.Totals {
	return pricing.Compute(pricing.FromCart(f.items))
}

// LoadProducts fetches the product for every item stored without one, so the
// totals and the posted unit prices cover every line.
func (f *CheckoutFlow) LoadProducts(ctx context.Context) error {
	for i := range f.items {
		if f.items[i].Product != nil {
			continue
		}
		p, err := f.client.GetProduct(ctx, f.items[i].ProductID)
		if err != nil {
			return fmt.Errorf("load product %d: %w", f.items[i].ProductID, err)
		}
		f.items[i].Product = p
	}
	return nil
}

// Validate checks the form and the address selection without calling the API.
func (f *CheckoutFlow) Validate(form CheckoutForm) error {
	errs := FieldErrors{}
	if strings.TrimSpace(form.RecipientName) == "" {
		errs["recipient_name"] = "Vui lòng nhập tên người nhận"
	}
	switch phone := strings.TrimSpace(form.Phone); {
	case phone == "":
		errs["phone"] = "Vui lòng nhập số điện thoại"
	case !phonePattern.MatchString(phone):
		errs["phone"] = "Số điện thoại không hợp lệ"
	}
	if strings.TrimSpace(form.AddressDetail) == "" {
		errs["address_detail"] = "Vui lòng nhập địa chỉ"
	}
	province, district, ward := f.address.Selection()
	if province == 0 {
		errs["province"] = "Vui lòng chọn tỉnh/thành phố"
	}
	if district == 0 {
		errs["district"] = "Vui lòng chọn quận/huyện"
	}
	if ward == 0 {
		errs["ward"] = "Vui lòng chọn phường/xã"
	}
	if form.PaymentMethodID == 0 {
		errs["payment_method"] = "Vui lòng chọn phương thức thanh toán"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PlaceOrder posts the order with one detail line per checkout item. Items
// missing a product snapshot are loaded first.
func (f *CheckoutFlow) PlaceOrder(ctx context.Context, form CheckoutForm) (*OrderPlacement, error) {
	if len(f.items) == 0 {
		return nil, errors.New("no items to check out")
	}
	if err := f.Validate(form); err != nil {
		return nil, err
	}
	if err := f.LoadProducts(ctx); err != nil {
		return nil, err
	}

	province, district, ward := f.address.Selection()
	req := models.CheckoutRequest{
		AddressDetail:   strings.TrimSpace(form.AddressDetail),
		ProvinceCode:    province,
		DistrictCode:    district,
		WardCode:        ward,
		RecipientName:   strings.TrimSpace(form.RecipientName),
		Phone:           strings.TrimSpace(form.Phone),
		PaymentMethodID: form.PaymentMethodID,
		Note:            form.Note,
		Total:           f.Totals().Total,
		Details:         make([]models.OrderDetailInput, 0, len(f.items)),
	}
	for _, it := range f.items {
		req.Details = append(req.Details, models.OrderDetailInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.Product.UnitPrice(),
		})
	}

	resp, err := f.client.Checkout(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.PaymentURL != "" {
		return &OrderPlacement{Order: resp.Order, RedirectURL: resp.PaymentURL}, nil
	}
	if err := f.client.Store().SetLastOrder(resp.Order); err != nil {
		return nil, err
	}
	return &OrderPlacement{Order: resp.Order, Route: RouteOrderConfirmation}, nil
}
