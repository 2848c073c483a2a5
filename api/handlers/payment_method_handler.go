package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/services"
)

type PaymentMethodHandler struct {
	paymentService *services.PaymentMethodService
}

func NewPaymentMethodHandler(paymentService *services.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{paymentService: paymentService}
}

// GET /api/payment-methods?all=true
// Shoppers only see active methods.
func (h *PaymentMethodHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.paymentService.List(c.Query("all") != "true")})
}

func (h *PaymentMethodHandler) Create(c *gin.Context) {
	var req models.CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	method, err := h.paymentService.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": method})
}

// PUT /api/payment-methods/:id/active
func (h *PaymentMethodHandler) SetActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	method, err := h.paymentService.SetActive(id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": method})
}
