package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-cosmetics/api/middleware"
	"go-cosmetics/internal/models"
	"go-cosmetics/internal/pricing"
	"go-cosmetics/internal/services"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /api/cart
// Lines carry a fresh product snapshot; totals are computed from it.
func (h *CartHandler) GetCart(c *gin.Context) {
	items := h.cartService.List(middleware.UserID(c))

	c.JSON(http.StatusOK, gin.H{
		"data":   items,
		"totals": pricing.Compute(pricing.FromCart(items)),
		"count":  len(items),
	})
}

// POST /api/cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.cartService.Add(middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.NewLine {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": result})
}

// PUT /api/cart/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.cartService.UpdateQuantity(middleware.UserID(c), itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

// DELETE /api/cart/:id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.cartService.Remove(middleware.UserID(c), itemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed", "id": itemID})
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	h.cartService.Clear(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
