package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-cosmetics/api/middleware"
	"go-cosmetics/internal/auth"
	"go-cosmetics/internal/models"
	"go-cosmetics/internal/services"
)

type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.TokenIssuer
	google      auth.GoogleProvider
	states      *auth.StateStore
	frontendURL string
	log         logrus.FieldLogger
}

// NewAuthHandler builds the auth endpoints. google may be nil when OAuth is
// not configured.
func NewAuthHandler(userService *services.UserService, tokens *auth.TokenIssuer, google auth.GoogleProvider, states *auth.StateStore, frontendURL string, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		google:      google,
		states:      states,
		frontendURL: frontendURL,
		log:         log,
	}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondToken(c, user)
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	user, exists := h.userService.GetByID(middleware.UserID(c))
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists", "message": "Tài khoản không tồn tại"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.userService.UpdateProfile(middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.userService.ChangePassword(middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// GET /api/auth/google/url
func (h *AuthHandler) GoogleURL(c *gin.Context) {
	if !h.googleEnabled(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"url": h.google.AuthCodeURL(h.states.New())}})
}

// GET /api/auth/google/callback
// Google redirects here; the browser is sent on to the storefront with the
// access token in the query string.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if !h.googleEnabled(c) {
		return
	}
	if msg := c.Query("error"); msg != "" {
		h.redirectLoginError(c, msg)
		return
	}
	if err := h.states.Consume(c.Query("state")); err != nil {
		h.redirectLoginError(c, "invalid_state")
		return
	}

	token, err := h.loginWithGoogle(c, c.Query("code"))
	if err != nil {
		h.log.WithError(err).Warn("google login failed")
		h.redirectLoginError(c, "google_login_failed")
		return
	}

	q := url.Values{}
	q.Set("accessToken", token)
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?"+q.Encode())
}

// POST /api/auth/google/exchange
// For clients that receive the authorization code themselves.
func (h *AuthHandler) GoogleExchange(c *gin.Context) {
	if !h.googleEnabled(c) {
		return
	}
	var req models.GoogleExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.State != "" {
		if err := h.states.Consume(req.State); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "message": "Phiên đăng nhập Google không hợp lệ"})
			return
		}
	}

	profile, err := h.google.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		h.log.WithError(err).Warn("google code exchange failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "message": "Đăng nhập Google thất bại"})
		return
	}
	user, err := h.userService.UpsertGoogleUser(profile)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondToken(c, user)
}

func (h *AuthHandler) loginWithGoogle(c *gin.Context, code string) (string, error) {
	if code == "" {
		return "", errors.New("missing authorization code")
	}
	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		return "", err
	}
	user, err := h.userService.UpsertGoogleUser(profile)
	if err != nil {
		return "", err
	}
	return h.tokens.Issue(*user)
}

func (h *AuthHandler) respondToken(c *gin.Context, user *models.User) {
	token, err := h.tokens.Issue(*user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": models.LoginResponse{AccessToken: token, User: *user}})
}

func (h *AuthHandler) googleEnabled(c *gin.Context) bool {
	if h.google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google login is not configured", "message": "Đăng nhập Google chưa được bật"})
		return false
	}
	return true
}

func (h *AuthHandler) redirectLoginError(c *gin.Context, reason string) {
	q := url.Values{}
	q.Set("error", reason)
	c.Redirect(http.StatusFound, h.frontendURL+"/login?"+q.Encode())
}
