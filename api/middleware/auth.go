package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-cosmetics/internal/auth"
	"go-cosmetics/internal/models"
)

const (
	ContextUserID = "user_id"
	ContextRoles  = "roles"
	ContextEmail  = "email"
)

// Authenticate requires a valid bearer token and stores the caller's id and
// roles in the context.
func Authenticate(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header is missing")
			return
		}
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "Authorization header must use the Bearer scheme")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoles, claims.Roles)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := models.User{Roles: Roles(c)}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "admin role required",
				"message": "Bạn không có quyền thực hiện thao tác này",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or 0 on public routes.
func UserID(c *gin.Context) int {
	return c.GetInt(ContextUserID)
}

func Roles(c *gin.Context) []string {
	return c.GetStringSlice(ContextRoles)
}

func IsAdmin(c *gin.Context) bool {
	return models.User{Roles: Roles(c)}.IsAdmin()
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   msg,
		"message": "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại",
	})
}
