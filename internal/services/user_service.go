package services

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"go-cosmetics/internal/auth"
	"go-cosmetics/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^(0|\+84)[35789]\d{8}$`)
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	return nil
}

// ValidatePhone accepts Vietnamese mobile numbers; empty is allowed.
func ValidatePhone(phone string) error {
	if phone != "" && !phoneRegex.MatchString(phone) {
		return fmt.Errorf("%w: invalid phone number", ErrInvalidInput)
	}
	return nil
}

type UserService struct {
	mu      sync.RWMutex
	users   map[int]*models.User
	byEmail map[string]int
	nextID  int
}

func NewUserService() *UserService {
	return &UserService{
		users:   make(map[int]*models.User),
		byEmail: make(map[string]int),
		nextID:  1,
	}
}

func (s *UserService) Register(req models.RegisterRequest) (*models.User, error) {
	return s.Create(models.UserInput{
		Username: &req.Username,
		FullName: &req.FullName,
		Email:    &req.Email,
		Phone:    &req.Phone,
		Password: &req.Password,
		Roles:    []string{models.RoleCustomer},
	})
}

// Create is used by registration and by the admin console.
func (s *UserService) Create(in models.UserInput) (*models.User, error) {
	if in.Email == nil || in.Username == nil || strings.TrimSpace(*in.Username) == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}
	if in.Password == nil || len(*in.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	email := normalizeEmail(*in.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if in.Phone != nil {
		if err := ValidatePhone(*in.Phone); err != nil {
			return nil, err
		}
	}
	hash, err := auth.HashPassword(*in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	u := &models.User{
		Email:        email,
		Active:       true,
		Roles:        []string{models.RoleCustomer},
		Provider:     "local",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyUserInput(u, in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
	}
	u.ID = s.nextID
	s.nextID++
	s.users[u.ID] = u
	s.byEmail[email] = u.ID

	out := cloneUser(u)
	return &out, nil
}

func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[normalizeEmail(email)]
	var u models.User
	if ok {
		u = cloneUser(s.users[id])
	}
	s.mu.RUnlock()

	if !ok || u.PasswordHash == "" || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInactiveAccount
	}
	return &u, nil
}

func (s *UserService) GetByID(id int) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, false
	}
	out := cloneUser(u)
	return &out, true
}

func (s *UserService) UpdateProfile(id int, req models.UpdateProfileRequest) (*models.User, error) {
	if req.Phone != nil {
		if err := ValidatePhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	return s.Update(id, models.UserInput{FullName: req.FullName, Phone: req.Phone}, req.Avatar)
}

func (s *UserService) ChangePassword(id int, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if u.PasswordHash != "" && !auth.CheckPassword(u.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

// UpsertGoogleUser links a Google profile to the account with the same email,
// creating a customer account on first login.
func (s *UserService) UpsertGoogleUser(profile auth.GoogleProfile) (*models.User, error) {
	email := normalizeEmail(profile.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if id, ok := s.byEmail[email]; ok {
		u := s.users[id]
		if !u.Active {
			return nil, ErrInactiveAccount
		}
		if u.FullName == "" {
			u.FullName = profile.Name
		}
		if profile.Picture != "" {
			u.Avatar = profile.Picture
		}
		u.EmailVerified = u.EmailVerified || profile.VerifiedEmail
		u.UpdatedAt = now
		out := cloneUser(u)
		return &out, nil
	}

	u := &models.User{
		ID:            s.nextID,
		Username:      strings.Split(email, "@")[0],
		FullName:      profile.Name,
		Email:         email,
		EmailVerified: profile.VerifiedEmail,
		Active:        true,
		Roles:         []string{models.RoleCustomer},
		Avatar:        profile.Picture,
		Provider:      "google",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.nextID++
	s.users[u.ID] = u
	s.byEmail[email] = u.ID

	out := cloneUser(u)
	return &out, nil
}

func (s *UserService) List() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	slices.SortFunc(out, func(a, b models.User) int { return a.ID - b.ID })
	return out
}

// Update applies admin edits. avatar is only settable through the profile.
func (s *UserService) Update(id int, in models.UserInput, avatar *string) (*models.User, error) {
	if in.Email != nil {
		if err := ValidateEmail(normalizeEmail(*in.Email)); err != nil {
			return nil, err
		}
	}
	if in.Phone != nil {
		if err := ValidatePhone(*in.Phone); err != nil {
			return nil, err
		}
	}
	var hash string
	if in.Password != nil {
		if len(*in.Password) < 6 {
			return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
		}
		h, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if other, taken := s.byEmail[email]; taken && other != id {
			return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
		}
		delete(s.byEmail, u.Email)
		u.Email = email
		s.byEmail[email] = id
	}
	applyUserInput(u, in)
	if hash != "" {
		u.PasswordHash = hash
	}
	if avatar != nil {
		u.Avatar = *avatar
	}
	u.UpdatedAt = time.Now()

	out := cloneUser(u)
	return &out, nil
}

func (s *UserService) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	return nil
}

// CountCustomers counts accounts holding the customer role.
func (s *UserService) CountCustomers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, u := range s.users {
		if u.HasRole(models.RoleCustomer) {
			n++
		}
	}
	return n
}

// SeedAdmin creates the bootstrap admin account if the email is unused.
func (s *UserService) SeedAdmin(email, password string) (*models.User, error) {
	s.mu.RLock()
	id, exists := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()
	if exists {
		u, _ := s.GetByID(id)
		return u, nil
	}
	username := "admin"
	fullName := "Quản trị viên"
	return s.Create(models.UserInput{
		Username: &username,
		FullName: &fullName,
		Email:    &email,
		Password: &password,
		Roles:    []string{models.RoleAdmin},
	})
}

func applyUserInput(u *models.User, in models.UserInput) {
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
	}
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	if len(in.Roles) > 0 {
		roles := make([]string, 0, len(in.Roles))
		for _, r := range in.Roles {
			roles = append(roles, strings.ToUpper(strings.TrimSpace(r)))
		}
		u.Roles = roles
	}
}

func cloneUser(u *models.User) models.User {
	out := *u
	out.Roles = slices.Clone(u.Roles)
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
