package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "CHỜ XÁC NHẬN"
	OrderStatusProcessing OrderStatus = "ĐANG XỬ LÝ"
	OrderStatusShipped    OrderStatus = "ĐANG GIAO"
	OrderStatusDelivered  OrderStatus = "ĐÃ GIAO"
	OrderStatusCancelled  OrderStatus = "ĐÃ HỦY"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "CHƯA THANH TOÁN"
	PaymentStatusPaid   PaymentStatus = "ĐÃ THANH TOÁN"
	PaymentStatusFailed PaymentStatus = "THANH TOÁN THẤT BẠI"
)

type Order struct {
	ID              int             `json:"id"`
	Code            string          `json:"code"`
	UserID          int             `json:"user_id"`
	AddressDetail   string          `json:"address_detail"`
	ProvinceCode    int             `json:"province_code"`
	DistrictCode    int             `json:"district_code"`
	WardCode        int             `json:"ward_code"`
	RecipientName   string          `json:"recipient_name"`
	Phone           string          `json:"phone"`
	PaymentMethodID int             `json:"payment_method_id"`
	Note            string          `json:"note"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Details         []OrderDetail   `json:"details"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderDetail struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	CategoryID  int             `json:"category_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type OrderDetailInput struct {
	ProductID int             `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutRequest is posted by the checkout page: order header plus one detail
// line per cart item. Total is what the client displayed; the server recomputes
// it and only logs a mismatch.
type CheckoutRequest struct {
	AddressDetail   string             `json:"address_detail" binding:"required"`
	ProvinceCode    int                `json:"province_code" binding:"required"`
	DistrictCode    int                `json:"district_code" binding:"required"`
	WardCode        int                `json:"ward_code" binding:"required"`
	RecipientName   string             `json:"recipient_name"`
	Phone           string             `json:"phone"`
	PaymentMethodID int                `json:"payment_method_id" binding:"required"`
	Note            string             `json:"note"`
	Total           decimal.Decimal    `json:"total"`
	Details         []OrderDetailInput `json:"details" binding:"required,min=1,dive"`
}

type CheckoutResponse struct {
	Order      Order  `json:"order"`
	PaymentURL string `json:"payment_url,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" binding:"required"`
}

type OrderFilter struct {
	Status OrderStatus
	UserID int
	From   time.Time
	To     time.Time
}

type PaymentMethod struct {
	ID       int    `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Redirect bool   `json:"redirect"`
}

type CreatePaymentMethodRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Redirect bool   `json:"redirect"`
}
