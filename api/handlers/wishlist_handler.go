package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-cosmetics/api/middleware"
	"go-cosmetics/internal/services"
)

type WishlistHandler struct {
	wishlistService *services.WishlistService
}

func NewWishlistHandler(wishlistService *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

func (h *WishlistHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.wishlistService.List(middleware.UserID(c))})
}

func (h *WishlistHandler) Add(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	if err := h.wishlistService.Add(middleware.UserID(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Added to wishlist", "product_id": productID})
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	if err := h.wishlistService.Remove(middleware.UserID(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist", "product_id": productID})
}
