package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/services"
)

type BrandHandler struct {
	brandService *services.BrandService
}

func NewBrandHandler(brandService *services.BrandService) *BrandHandler {
	return &BrandHandler{brandService: brandService}
}

func (h *BrandHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.brandService.List(c.Query("active") == "true")})
}

// GET /api/brands/paged
func (h *BrandHandler) ListPaged(c *gin.Context) {
	page, limit := pageParams(c)
	brands, total := h.brandService.ListPaged(page, limit)
	respondPage(c, brands, page, limit, total)
}

func (h *BrandHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	brand, exists := h.brandService.Get(id)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found", "message": "Không tìm thấy thương hiệu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": brand})
}

func (h *BrandHandler) Create(c *gin.Context) {
	var in models.ReferenceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	brand, err := h.brandService.Create(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": brand})
}

func (h *BrandHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.ReferenceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	brand, err := h.brandService.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": brand})
}

func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.brandService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted", "id": id})
}
