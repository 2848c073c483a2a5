package storefront

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"go-cosmetics/internal/models"
)

// Routes a session change can send the shopper to.
const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteAccount        = "/account"
	RouteAdminDashboard = "/admin/dashboard"
)

var ErrNoOAuthCredentials = errors.New("callback carries no token or code")

// Session is the signed-in state shared by every screen. The user is kept in
// memory and mirrored to the store so a restart can restore it.
type Session struct {
	client *Client

	mu      sync.RWMutex
	user    *models.User
	loading bool
}

func NewSession(client *Client) *Session {
	return &Session{client: client}
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.client.Store().Token() != ""
}

func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin()
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Restore rebuilds the session from the store. When a token is present the
// profile is re-fetched; if that fails the mirrored user is used as is.
func (s *Session) Restore(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	store := s.client.Store()
	if store.Token() == "" {
		s.setUser(nil)
		return nil
	}
	profile, err := s.client.Profile(ctx)
	if err == nil {
		return s.remember(*profile)
	}
	if errors.Is(err, ErrUnauthorized) {
		s.setUser(nil)
		return err
	}
	if cached, ok := store.CurrentUser(); ok {
		s.setUser(cached)
		return nil
	}
	return err
}

// Login signs in and returns the route to land on for the user's role.
func (s *Session) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := s.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return "", err
	}
	if err := s.establish(ctx, resp.AccessToken, &resp.User); err != nil {
		return "", err
	}
	u, _ := s.User()
	return LandingRoute(u), nil
}

func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}
	return s.client.Register(ctx, req)
}

// Logout forgets the user in memory and in the store.
func (s *Session) Logout() error {
	s.setUser(nil)
	return s.client.Store().ClearSession()
}

func (s *Session) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	u, err := s.client.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.remember(*u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	errs := FieldErrors{}
	if oldPassword == "" {
		errs["old_password"] = "Vui lòng nhập mật khẩu hiện tại"
	}
	if len(newPassword) < 6 {
		errs["new_password"] = "Mật khẩu mới phải có ít nhất 6 ký tự"
	}
	if newPassword != confirm {
		errs["confirm_password"] = "Mật khẩu xác nhận không khớp"
	}
	if len(errs) > 0 {
		return errs
	}
	return s.client.ChangePassword(ctx, oldPassword, newPassword)
}

// GoogleLoginURL is the consent page to send the browser to.
func (s *Session) GoogleLoginURL(ctx context.Context) (string, error) {
	return s.client.GoogleAuthURL(ctx)
}

// CompleteOAuth finishes a Google sign-in from the callback query. A token
// (accessToken or access_token) is used directly, a bare code is exchanged
// with the backend. If the profile cannot be fetched the user is built from
// the email, name and avatar parameters.
func (s *Session) CompleteOAuth(ctx context.Context, params url.Values) (string, error) {
	token := params.Get("accessToken")
	if token == "" {
		token = params.Get("access_token")
	}

	var fallback *models.User
	if email := params.Get("email"); email != "" {
		fallback = &models.User{
			Email:    email,
			FullName: params.Get("name"),
			Avatar:   params.Get("avatar"),
			Provider: "google",
			Active:   true,
			Roles:    []string{models.RoleCustomer},
		}
	}

	switch {
	case token != "":
	case params.Get("code") != "":
		resp, err := s.client.GoogleExchange(ctx, params.Get("code"), params.Get("state"))
		if err != nil {
			return "", err
		}
		token = resp.AccessToken
		if resp.User.Email != "" {
			fallback = &resp.User
		}
	default:
		return "", ErrNoOAuthCredentials
	}

	if err := s.establish(ctx, token, fallback); err != nil {
		return "", err
	}
	u, _ := s.User()
	return LandingRoute(u), nil
}

// establish stores the token, then prefers the server profile over fallback.
func (s *Session) establish(ctx context.Context, token string, fallback *models.User) error {
	if token == "" {
		return errors.New("empty access token")
	}
	if err := s.client.Store().SetToken(token); err != nil {
		return err
	}
	profile, err := s.client.Profile(ctx)
	if err != nil {
		if fallback == nil || errors.Is(err, ErrUnauthorized) {
			_ = s.client.Store().ClearSession()
			return err
		}
		profile = fallback
	}
	return s.remember(*profile)
}

func (s *Session) remember(u models.User) error {
	s.setUser(&u)
	return s.client.Store().SetCurrentUser(u)
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// LandingRoute picks the first page after sign-in.
func LandingRoute(u models.User) string {
	switch {
	case u.IsAdmin():
		return RouteAdminDashboard
	case u.HasRole(models.RoleCustomer):
		return RouteHome
	default:
		return RouteAccount
	}
}

// ValidateRegistration runs the sign-up form checks.
func ValidateRegistration(req models.RegisterRequest) error {
	errs := FieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		errs["username"] = "Vui lòng nhập tên đăng nhập"
	}
	if !strings.Contains(req.Email, "@") {
		errs["email"] = "Email không hợp lệ"
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		errs["phone"] = "Số điện thoại không hợp lệ"
	}
	if len(req.Password) < 6 {
		errs["password"] = "Mật khẩu phải có ít nhất 6 ký tự"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
