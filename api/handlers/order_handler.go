package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-cosmetics/api/middleware"
	"go-cosmetics/internal/models"
	"go-cosmetics/internal/services"
)

type OrderHandler struct {
	orderService *services.OrderService
	frontendURL  string
}

func NewOrderHandler(orderService *services.OrderService, frontendURL string) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		frontendURL:  frontendURL,
	}
}

// POST /api/orders/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.orderService.Checkout(middleware.UserID(c), req, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// GET /api/orders/my
func (h *OrderHandler) MyOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.orderService.ListByUser(middleware.UserID(c))})
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(id, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

// PUT /api/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.CancelByCustomer(id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

// GET /api/orders (admin) ?status=&user_id=&from=2006-01-02&to=2006-01-02
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var f models.OrderFilter
	f.Status = models.OrderStatus(c.Query("status"))
	var ok bool
	if f.UserID, ok = queryInt(c, "user_id"); !ok {
		return
	}
	if f.From, ok = queryDate(c, "from"); !ok {
		return
	}
	if f.To, ok = queryDate(c, "to"); !ok {
		return
	}
	if !f.To.IsZero() {
		f.To = f.To.AddDate(0, 0, 1)
	}

	orders := h.orderService.ListAll(f)
	page, limit := pageParams(c)
	if c.Query("page") == "" {
		c.JSON(http.StatusOK, gin.H{"data": orders})
		return
	}
	start := min((page-1)*limit, len(orders))
	end := min(start+limit, len(orders))
	respondPage(c, orders[start:end], page, limit, len(orders))
}

// PUT /api/orders/:id/status (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

// PUT /api/orders/:id/payment-status (admin)
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(id, req.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

// GET /api/orders/vnpay-callback
// The gateway redirects the shopper here; we record the outcome and send the
// browser on to the storefront result page.
func (h *OrderHandler) VNPayCallback(c *gin.Context) {
	order, success, err := h.orderService.HandleVNPayReturn(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	q := url.Values{}
	q.Set("orderId", order.Code)
	q.Set("success", boolString(success))
	c.Redirect(http.StatusFound, h.frontendURL+"/order-result?"+q.Encode())
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// queryInt returns 0 for an absent parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name, "message": "Tham số không hợp lệ"})
		return 0, false
	}
	return n, true
}

func queryDate(c *gin.Context, name string) (time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + ", expected YYYY-MM-DD", "message": "Ngày không hợp lệ"})
		return time.Time{}, false
	}
	return t, true
}
