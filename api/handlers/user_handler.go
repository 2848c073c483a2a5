package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-cosmetics/api/middleware"
	"go-cosmetics/internal/models"
	"go-cosmetics/internal/services"
)

// UserHandler serves the admin user management screens.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.userService.List()})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, exists := h.userService.GetByID(id)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "message": "Không tìm thấy người dùng"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *UserHandler) Create(c *gin.Context) {
	var in models.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.userService.Create(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.userService.Update(id, in, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id == middleware.UserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete own account", "message": "Không thể xóa tài khoản đang đăng nhập"})
		return
	}
	if err := h.userService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "id": id})
}
