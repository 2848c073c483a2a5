package models

import (
	"slices"
	"strings"
	"time"
)

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

type User struct {
	ID            int       `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Active        bool      `json:"active"`
	Roles         []string  `json:"roles"`
	Avatar        string    `json:"avatar,omitempty"`
	Provider      string    `json:"provider,omitempty"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (u User) HasRole(role string) bool {
	return slices.ContainsFunc(u.Roles, func(r string) bool {
		return strings.EqualFold(r, role)
	})
}

func (u User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// UserInput is the admin create/update payload.
type UserInput struct {
	Username *string  `json:"username,omitempty"`
	FullName *string  `json:"full_name,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Password *string  `json:"password,omitempty"`
	Active   *bool    `json:"active,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

type GoogleExchangeRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state"`
}
