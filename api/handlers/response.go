package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-cosmetics/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// respondError maps service errors onto HTTP status codes. The message field
// is what the storefront shows to the shopper.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Đã có lỗi xảy ra, vui lòng thử lại"
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, message = http.StatusNotFound, "Không tìm thấy dữ liệu"
	case errors.Is(err, services.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Email hoặc mật khẩu không đúng"
	case errors.Is(err, services.ErrInactiveAccount):
		status, message = http.StatusForbidden, "Tài khoản đã bị khóa"
	case errors.Is(err, services.ErrForbidden):
		status, message = http.StatusForbidden, "Bạn không có quyền truy cập"
	case errors.Is(err, services.ErrInsufficientStock):
		status, message = http.StatusConflict, "Sản phẩm không đủ số lượng trong kho"
	case errors.Is(err, services.ErrConflict):
		status, message = http.StatusConflict, "Dữ liệu đã tồn tại hoặc đang được sử dụng"
	case errors.Is(err, services.ErrInvalidTransition):
		status, message = http.StatusConflict, "Không thể chuyển sang trạng thái này"
	case errors.Is(err, services.ErrInvalidQuantity):
		status, message = http.StatusBadRequest, "Số lượng phải lớn hơn 0"
	case errors.Is(err, services.ErrEmptyCart):
		status, message = http.StatusBadRequest, "Giỏ hàng trống"
	case errors.Is(err, services.ErrInvalidInput):
		status, message = http.StatusBadRequest, "Dữ liệu không hợp lệ"
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "message": message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "message": "Dữ liệu không hợp lệ"})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name, "message": "Mã không hợp lệ"})
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}

func respondPage(c *gin.Context, data any, page, limit, total int) {
	totalPages := (total + limit - 1) / limit

	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
			"has_next":    page < totalPages,
			"has_prev":    page > 1,
		},
	})
}
