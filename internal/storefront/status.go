package storefront

import "go-cosmetics/internal/models"

// Badge styles.
const (
	StyleDefault = "default"
	StyleWarning = "warning"
	StyleInfo    = "info"
	StylePrimary = "primary"
	StyleSuccess = "success"
	StyleDanger  = "danger"
)

// Label is how a status is rendered as a badge.
type Label struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

var statusLabels = map[string]Label{
	string(models.OrderStatusPending):    {Text: "Chờ xác nhận", Style: StyleWarning},
	string(models.OrderStatusProcessing): {Text: "Đang xử lý", Style: StyleInfo},
	string(models.OrderStatusShipped):    {Text: "Đang giao hàng", Style: StylePrimary},
	string(models.OrderStatusDelivered):  {Text: "Đã giao hàng", Style: StyleSuccess},
	string(models.OrderStatusCancelled):  {Text: "Đã hủy", Style: StyleDanger},
	string(models.PaymentStatusUnpaid):   {Text: "Chưa thanh toán", Style: StyleWarning},
	string(models.PaymentStatusPaid):     {Text: "Đã thanh toán", Style: StyleSuccess},
	string(models.PaymentStatusFailed):   {Text: "Thanh toán thất bại", Style: StyleDanger},
}

// StatusLabel maps an order or payment status to its badge. Unknown values
// keep their text with the default style; an empty value reads "Không xác định".
func StatusLabel(status string) Label {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	if status == "" {
		return Label{Text: "Không xác định", Style: StyleDefault}
	}
	return Label{Text: status, Style: StyleDefault}
}

func OrderStatusLabel(s models.OrderStatus) Label { return StatusLabel(string(s)) }

func PaymentStatusLabel(s models.PaymentStatus) Label { return StatusLabel(string(s)) }
