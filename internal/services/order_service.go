package services

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-cosmetics/internal/metrics"
	"go-cosmetics/internal/models"
	"go-cosmetics/internal/payment/vnpay"
	"go-cosmetics/internal/pricing"
)

// PaymentGateway is the redirect payment provider used for methods flagged
// as Redirect.
type PaymentGateway interface {
	BuildPaymentURL(req vnpay.PaymentRequest) (string, error)
	VerifyReturn(values url.Values) (vnpay.ReturnResult, error)
}

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
}

func IsKnownOrderStatus(status models.OrderStatus) bool {
	switch status {
	case models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
		return true
	}
	return false
}

type OrderService struct {
	mu         sync.RWMutex
	orders     map[int]*models.Order // order_id -> order
	byCode     map[string]int        // order code -> order_id
	userOrders map[int][]int         // user_id -> order_ids
	nextID     int

	products *ProductService
	carts    *CartService
	payments *PaymentMethodService
	gateway  PaymentGateway
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewOrderService(products *ProductService, carts *CartService, payments *PaymentMethodService, gateway PaymentGateway, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		orders:     make(map[int]*models.Order),
		byCode:     make(map[string]int),
		userOrders: make(map[int][]int),
		nextID:     1,
		products:   products,
		carts:      carts,
		payments:   payments,
		gateway:    gateway,
		log:        log,
		now:        time.Now,
	}
}

// Checkout creates an order from the posted detail lines. Prices come from
// the catalogue, totals are recomputed and stock is reserved atomically. The
// purchased products are removed from the user's cart.
func (s *OrderService) Checkout(userID int, req models.CheckoutRequest, clientIP string) (*models.CheckoutResponse, error) {
	if strings.TrimSpace(req.AddressDetail) == "" || req.ProvinceCode == 0 || req.DistrictCode == 0 || req.WardCode == 0 {
		return nil, fmt.Errorf("%w: shipping address is incomplete", ErrInvalidInput)
	}
	if err := ValidatePhone(req.Phone); err != nil {
		return nil, err
	}
	if len(req.Details) == 0 {
		return nil, ErrEmptyCart
	}
	method, ok := s.payments.GetByID(req.PaymentMethodID)
	if !ok || !method.Active {
		return nil, fmt.Errorf("%w: payment method %d is not available", ErrInvalidInput, req.PaymentMethodID)
	}
	if method.Redirect && s.gateway == nil {
		return nil, fmt.Errorf("%w: payment method %s is not configured", ErrInvalidInput, method.Code)
	}

	quantities := make(map[int]int)
	var productOrder []int
	for _, d := range req.Details {
		if d.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if _, seen := quantities[d.ProductID]; !seen {
			productOrder = append(productOrder, d.ProductID)
		}
		quantities[d.ProductID] += d.Quantity
	}

	details := make([]models.OrderDetail, 0, len(productOrder))
	lines := make([]pricing.Line, 0, len(productOrder))
	for _, productID := range productOrder {
		product, ok := s.products.GetProductByID(productID)
		if !ok {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		qty := quantities[productID]
		unit := product.UnitPrice()
		lines = append(lines, pricing.Line{UnitPrice: unit, Quantity: qty})
		details = append(details, models.OrderDetail{
			ProductID:   productID,
			ProductName: product.Name,
			CategoryID:  product.CategoryID,
			Quantity:    qty,
			UnitPrice:   unit,
			LineTotal:   pricing.Subtotal(lines[len(lines)-1:]),
		})
	}
	totals := pricing.Compute(lines)
	if !req.Total.IsZero() && !req.Total.Equal(totals.Total) {
		s.log.WithFields(logrus.Fields{
			"user_id":      userID,
			"client_total": req.Total.String(),
			"server_total": totals.Total.String(),
		}).Warn("checkout total mismatch, using server total")
	}

	if err := s.products.Reserve(quantities); err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		Code:            generateOrderRef(now),
		UserID:          userID,
		AddressDetail:   strings.TrimSpace(req.AddressDetail),
		ProvinceCode:    req.ProvinceCode,
		DistrictCode:    req.DistrictCode,
		WardCode:        req.WardCode,
		RecipientName:   req.RecipientName,
		Phone:           req.Phone,
		PaymentMethodID: method.ID,
		Note:            req.Note,
		Subtotal:        totals.Subtotal,
		ShippingFee:     totals.Shipping,
		Total:           totals.Total,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
		Details:         details,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var paymentURL string
	if method.Redirect {
		u, err := s.gateway.BuildPaymentURL(vnpay.PaymentRequest{
			OrderCode: order.Code,
			Amount:    order.Total,
			Info:      "Thanh toan don hang " + order.Code,
			ClientIP:  clientIP,
			CreatedAt: now,
		})
		if err != nil {
			s.products.Release(quantities)
			return nil, fmt.Errorf("build payment url: %w", err)
		}
		paymentURL = u
	}

	s.mu.Lock()
	order.ID = s.nextID
	s.nextID++
	s.orders[order.ID] = order
	s.byCode[order.Code] = order.ID
	s.userOrders[userID] = append(s.userOrders[userID], order.ID)
	out := cloneOrder(order)
	s.mu.Unlock()

	s.carts.RemoveProducts(userID, productOrder)
	metrics.RecordOrderPlaced(method.Code)
	s.log.WithFields(logrus.Fields{
		"order_id": out.ID,
		"code":     out.Code,
		"user_id":  userID,
		"total":    out.Total.String(),
		"payment":  method.Code,
	}).Info("order created")

	return &models.CheckoutResponse{Order: out, PaymentURL: paymentURL}, nil
}

func (s *OrderService) ListByUser(userID int) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.userOrders[userID]
	out := make([]models.Order, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, cloneOrder(s.orders[ids[i]]))
	}
	return out
}

// GetByID returns the order if the caller owns it or is an admin.
func (s *OrderService) GetByID(id, userID int, isAdmin bool) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.orders[id]
	if !exists {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if !isAdmin && o.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", id, ErrForbidden)
	}
	out := cloneOrder(o)
	return &out, nil
}

// ListAll returns orders matching the filter, newest first.
func (s *OrderService) ListAll(f models.OrderFilter) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !o.CreatedAt.Before(f.To) {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	slices.SortFunc(out, func(a, b models.Order) int { return b.ID - a.ID })
	return out
}

// UpdateStatus applies an admin status change. Cancelling returns the
// reserved stock; delivering a cash order marks it paid.
func (s *OrderService) UpdateStatus(id int, status models.OrderStatus) (*models.Order, error) {
	return s.changeStatus(id, status, nil)
}

// CancelByCustomer lets the owner cancel an order that is still pending.
// Ownership and the pending check are evaluated under the same lock as the
// cancellation, so a concurrent admin transition cannot slip in between.
func (s *OrderService) CancelByCustomer(id, userID int) (*models.Order, error) {
	return s.changeStatus(id, models.OrderStatusCancelled, func(o *models.Order) error {
		if o.UserID != userID {
			return fmt.Errorf("order %d: %w", id, ErrForbidden)
		}
		if o.Status != models.OrderStatusPending {
			return fmt.Errorf("%w: only pending orders can be cancelled", ErrInvalidTransition)
		}
		return nil
	})
}

// changeStatus moves an order to status under the write lock. A non-nil
// guard sees the order first and can veto the change.
func (s *OrderService) changeStatus(id int, status models.OrderStatus, guard func(*models.Order) error) (*models.Order, error) {
	if !IsKnownOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	s.mu.Lock()
	o, exists := s.orders[id]
	if !exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if guard != nil {
		if err := guard(o); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	from := o.Status
	changed, err := s.transitionLocked(o, status)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	out := cloneOrder(o)
	s.mu.Unlock()

	if changed {
		s.afterTransition(out, from)
	}
	return &out, nil
}

// transitionLocked reports whether the status actually changed. s.mu must
// be held for writing.
func (s *OrderService) transitionLocked(o *models.Order, status models.OrderStatus) (bool, error) {
	if o.Status == status {
		return false, nil
	}
	if !slices.Contains(orderTransitions[o.Status], status) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}
	o.Status = status
	o.UpdatedAt = s.now()
	if status == models.OrderStatusDelivered && o.PaymentStatus == models.PaymentStatusUnpaid {
		if m, ok := s.payments.GetByID(o.PaymentMethodID); ok && !m.Redirect {
			o.PaymentStatus = models.PaymentStatusPaid
		}
	}
	return true, nil
}

// afterTransition runs the side effects of a status change outside the lock.
func (s *OrderService) afterTransition(o models.Order, from models.OrderStatus) {
	if o.Status == models.OrderStatusCancelled {
		s.products.Release(detailQuantities(o.Details))
	}
	metrics.RecordStatusChange(string(o.Status))
	s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"from":     from,
		"to":       o.Status,
	}).Info("order status changed")
}

// UpdatePaymentStatus sets the payment status from the admin side. A paid
// order stays paid and a cancelled order cannot be marked paid.
func (s *OrderService) UpdatePaymentStatus(id int, status models.PaymentStatus) (*models.Order, error) {
	switch status {
	case models.PaymentStatusUnpaid, models.PaymentStatusPaid, models.PaymentStatusFailed:
	default:
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.orders[id]
	if !exists {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if o.PaymentStatus == models.PaymentStatusPaid && status != models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: order %d is already paid", ErrInvalidTransition, id)
	}
	if o.Status == models.OrderStatusCancelled && status == models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: order %d is cancelled", ErrInvalidTransition, id)
	}
	o.PaymentStatus = status
	o.UpdatedAt = s.now()
	out := cloneOrder(o)
	return &out, nil
}

// HandleVNPayReturn verifies the gateway callback and records the payment
// outcome on the order it references. The reported amount must equal the
// order total. A settled payment is never downgraded by a later return, a
// failed payment cancels the order and a payment that arrives for an
// already cancelled order is logged for refund instead of being recorded.
func (s *OrderService) HandleVNPayReturn(values url.Values) (*models.Order, bool, error) {
	if s.gateway == nil {
		return nil, false, fmt.Errorf("%w: payment gateway is not configured", ErrInvalidInput)
	}
	res, err := s.gateway.VerifyReturn(values)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	fields := logrus.Fields{
		"order_code":     res.OrderCode,
		"response_code":  res.ResponseCode,
		"transaction_no": res.TransactionNo,
		"amount":         res.Amount.String(),
	}

	s.mu.Lock()
	id, ok := s.byCode[res.OrderCode]
	if !ok {
		s.mu.Unlock()
		return nil, false, fmt.Errorf("order %s: %w", res.OrderCode, ErrNotFound)
	}
	o := s.orders[id]
	if !res.Amount.Equal(o.Total) {
		total := o.Total
		s.mu.Unlock()
		s.log.WithFields(fields).WithField("total", total.String()).Warn("vnpay amount does not match order total")
		return nil, false, fmt.Errorf("%w: paid amount %s does not match order total %s", ErrInvalidInput, res.Amount, total)
	}

	from := o.Status
	var changed, refund bool
	switch {
	case o.PaymentStatus == models.PaymentStatusPaid:
	case o.Status == models.OrderStatusCancelled:
		refund = res.Success
	case res.Success:
		o.PaymentStatus = models.PaymentStatusPaid
		o.UpdatedAt = s.now()
	default:
		o.PaymentStatus = models.PaymentStatusFailed
		o.UpdatedAt = s.now()
		// Orders already on their way keep their status; only the payment fails.
		if slices.Contains(orderTransitions[o.Status], models.OrderStatusCancelled) {
			changed, _ = s.transitionLocked(o, models.OrderStatusCancelled)
		}
	}
	out := cloneOrder(o)
	s.mu.Unlock()

	if changed {
		s.afterTransition(out, from)
	}
	fields["order_id"] = id
	if refund {
		s.log.WithFields(fields).Warn("vnpay payment received for cancelled order, refund required")
	}
	s.log.WithFields(fields).Info("vnpay return processed")
	return &out, out.PaymentStatus == models.PaymentStatusPaid, nil
}

// Snapshot copies every order, for reporting.
func (s *OrderService) Snapshot() []models.Order {
	return s.ListAll(models.OrderFilter{})
}

// generateOrderRef returns a reference like 20251015130500-<uuid4>.
func generateOrderRef(now time.Time) string {
	return now.Format("20060102150405") + "-" + uuid.NewString()
}

func detailQuantities(details []models.OrderDetail) map[int]int {
	q := make(map[int]int, len(details))
	for _, d := range details {
		q[d.ProductID] += d.Quantity
	}
	return q
}

func cloneOrder(o *models.Order) models.Order {
	out := *o
	out.Details = slices.Clone(o.Details)
	return out
}
