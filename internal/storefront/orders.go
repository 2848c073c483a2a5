package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-cosmetics/internal/models"
)

func (c *Client) ListCart(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	_, err := c.get(ctx, "/cart", nil, &items)
	return items, err
}

func (c *Client) AddToCart(ctx context.Context, productID, quantity int) (*models.AddToCartResult, error) {
	var out models.AddToCartResult
	req := models.AddToCartRequest{ProductID: productID, Quantity: quantity}
	if err := c.send(ctx, http.MethodPost, "/cart", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID, quantity int) (*models.CartItem, error) {
	var out models.CartItem
	req := models.UpdateCartItemRequest{Quantity: quantity}
	if err := c.send(ctx, http.MethodPut, "/cart/"+strconv.Itoa(itemID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID int) error {
	return c.send(ctx, http.MethodDelete, "/cart/"+strconv.Itoa(itemID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, "/cart", nil, nil)
}

func (c *Client) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	var out models.CheckoutResponse
	if err := c.send(ctx, http.MethodPost, "/orders/checkout", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	_, err := c.get(ctx, "/orders/my", nil, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	var out models.Order
	if _, err := c.get(ctx, "/orders/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, id int) (*models.Order, error) {
	var out models.Order
	if err := c.send(ctx, http.MethodPut, "/orders/"+strconv.Itoa(id)+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders is the admin order list. Zero filter fields are omitted.
func (c *Client) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.UserID != 0 {
		q.Set("user_id", strconv.Itoa(f.UserID))
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.Format(time.DateOnly))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.Format(time.DateOnly))
	}
	var out []models.Order
	_, err := c.get(ctx, "/orders", q, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	var out models.Order
	req := models.UpdateOrderStatusRequest{Status: status}
	if err := c.send(ctx, http.MethodPut, "/orders/"+strconv.Itoa(id)+"/status", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, id int, status models.PaymentStatus) (*models.Order, error) {
	var out models.Order
	req := models.UpdatePaymentStatusRequest{PaymentStatus: status}
	if err := c.send(ctx, http.MethodPut, "/orders/"+strconv.Itoa(id)+"/payment-status", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPaymentMethods returns the active methods unless all is set.
func (c *Client) ListPaymentMethods(ctx context.Context, all bool) ([]models.PaymentMethod, error) {
	var q url.Values
	if all {
		q = url.Values{"all": {"true"}}
	}
	var out []models.PaymentMethod
	_, err := c.get(ctx, "/payment-methods", q, &out)
	return out, err
}

func (c *Client) CreatePaymentMethod(ctx context.Context, req models.CreatePaymentMethodRequest) (*models.PaymentMethod, error) {
	var out models.PaymentMethod
	if err := c.send(ctx, http.MethodPost, "/payment-methods", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetPaymentMethodActive(ctx context.Context, id int, active bool) (*models.PaymentMethod, error) {
	var out models.PaymentMethod
	req := map[string]bool{"active": active}
	if err := c.send(ctx, http.MethodPut, "/payment-methods/"+strconv.Itoa(id)+"/active", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Wishlist(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	_, err := c.get(ctx, "/wishlist", nil, &out)
	return out, err
}

func (c *Client) AddToWishlist(ctx context.Context, productID int) error {
	return c.send(ctx, http.MethodPost, "/wishlist/"+strconv.Itoa(productID), nil, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID int) error {
	return c.send(ctx, http.MethodDelete, "/wishlist/"+strconv.Itoa(productID), nil, nil)
}

func (c *Client) Revenue(ctx context.Context, period models.RevenuePeriod, from, to time.Time) ([]models.RevenuePoint, error) {
	q := url.Values{"period": {string(period)}}
	if !from.IsZero() {
		q.Set("from", from.Format(time.DateOnly))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(time.DateOnly))
	}
	var out []models.RevenuePoint
	_, err := c.get(ctx, "/statistics/revenue", q, &out)
	return out, err
}

func (c *Client) BestSellers(ctx context.Context, limit int) ([]models.BestSeller, error) {
	var out []models.BestSeller
	_, err := c.get(ctx, "/statistics/best-sellers", url.Values{"limit": {strconv.Itoa(limit)}}, &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var out models.DashboardSummary
	if _, err := c.get(ctx, "/statistics/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SalesChart(ctx context.Context, year int) ([]models.RevenuePoint, error) {
	var out []models.RevenuePoint
	_, err := c.get(ctx, "/statistics/sales-chart", url.Values{"year": {strconv.Itoa(year)}}, &out)
	return out, err
}

func (c *Client) CategoryChart(ctx context.Context) ([]models.CategorySales, error) {
	var out []models.CategorySales
	_, err := c.get(ctx, "/statistics/category-chart", nil, &out)
	return out, err
}
