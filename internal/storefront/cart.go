package storefront

import (
	"context"
	"errors"
	"slices"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/pricing"
)

// ErrQuantityTooLow is returned before any request is made.
var ErrQuantityTooLow = errors.New("quantity must be at least 1")

// CartFlow is the cart page: it owns the displayed lines and re-fetches them
// after each mutation instead of reconciling locally.
type CartFlow struct {
	client *Client
	bus    *EventBus
	items  []models.CartItem
}

func NewCartFlow(client *Client, bus *EventBus) *CartFlow {
	return &CartFlow{client: client, bus: bus}
}

func (f *CartFlow) Items() []models.CartItem { return slices.Clone(f.items) }

func (f *CartFlow) Load(ctx context.Context) error {
	items, err := f.client.ListCart(ctx)
	if err != nil {
		return err
	}
	f.items = items
	return nil
}

// Add puts quantity units of the product in the cart. cart:add is published
// only when the product opened a new line.
func (f *CartFlow) Add(ctx context.Context, productID, quantity int) (*models.AddToCartResult, error) {
	if quantity < 1 {
		return nil, ErrQuantityTooLow
	}
	res, err := f.client.AddToCart(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if res.NewLine {
		f.bus.Publish(EventCartAdd)
	}
	return res, nil
}

func (f *CartFlow) UpdateQuantity(ctx context.Context, itemID, quantity int) error {
	if quantity < 1 {
		return ErrQuantityTooLow
	}
	if _, err := f.client.UpdateCartItem(ctx, itemID, quantity); err != nil {
		return err
	}
	return f.Load(ctx)
}

func (f *CartFlow) Remove(ctx context.Context, itemID int) error {
	if err := f.client.RemoveCartItem(ctx, itemID); err != nil {
		return err
	}
	f.items = slices.DeleteFunc(f.items, func(it models.CartItem) bool { return it.ID == itemID })
	f.bus.Publish(EventCartRemove)
	return nil
}

func (f *CartFlow) Clear(ctx context.Context) error {
	if err := f.client.ClearCart(ctx); err != nil {
		return err
	}
	f.items = nil
	f.bus.Publish(EventCartClear)
	return nil
}

// Totals uses the same arithmetic as checkout and the order service.
func (f *CartFlow) Totals() pricing.Totals {
	return pricing.Compute(pricing.FromCart(f.items))
}

// ProceedToCheckout stores the selected lines for the checkout page. An empty
// selection takes the whole cart.
func (f *CartFlow) ProceedToCheckout(itemIDs ...int) ([]models.CartItem, error) {
	selected := f.items
	if len(itemIDs) > 0 {
		selected = nil
		for _, it := range f.items {
			if slices.Contains(itemIDs, it.ID) {
				selected = append(selected, it)
			}
		}
	}
	if len(selected) == 0 {
		return nil, errors.New("no cart items selected")
	}
	if err := f.client.Store().SetCheckoutItems(selected); err != nil {
		return nil, err
	}
	return slices.Clone(selected), nil
}
