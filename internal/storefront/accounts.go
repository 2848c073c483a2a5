package storefront

import (
	"context"
	"net/http"
	"strconv"

	"go-cosmetics/internal/models"
)

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var out models.User
	if err := c.send(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if _, err := c.get(ctx, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	var out models.User
	if err := c.send(ctx, http.MethodPut, "/auth/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := models.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.send(ctx, http.MethodPut, "/auth/password", req, nil)
}

func (c *Client) GoogleAuthURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if _, err := c.get(ctx, "/auth/google/url", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) GoogleExchange(ctx context.Context, code, state string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	req := models.GoogleExchangeRequest{Code: code, State: state}
	if err := c.send(ctx, http.MethodPost, "/auth/google/exchange", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	_, err := c.get(ctx, "/users", nil, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id int) (*models.User, error) {
	var out models.User
	if _, err := c.get(ctx, "/users/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := c.send(ctx, http.MethodPost, "/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := c.send(ctx, http.MethodPut, "/users/"+strconv.Itoa(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, "/users/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) Summarize(ctx context.Context, previous string, messages []models.ChatMessage) (string, error) {
	var out models.SummarizeResponse
	req := models.SummarizeRequest{PreviousSummary: previous, Messages: messages}
	if err := c.send(ctx, http.MethodPost, "/chat/summarize", req, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}
