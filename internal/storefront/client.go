package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnauthorized matches any 401 response. If the request carried a token,
// the token is gone from the store by the time the error is returned.
var ErrUnauthorized = errors.New("unauthorized")

const fallbackMessage = "Đã có lỗi xảy ra, vui lòng thử lại"

// APIError carries the message the backend attached to a failed request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the text to show the user for err.
func Message(err error) string {
	var apiErr *APIError
	var fieldErrs FieldErrors
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, ErrAdminRequired):
		return adminRequiredMessage
	case errors.As(err, &fieldErrs):
		for _, msg := range fieldErrs {
			return msg
		}
	}
	return fallbackMessage
}

type Config struct {
	// BaseURL is the server root; the /api prefix is added by the client.
	BaseURL    string
	HTTPClient *http.Client
	Store      *Store
	// OnUnauthorized runs when an authenticated request gets a 401,
	// typically to navigate to /login.
	OnUnauthorized func()
}

// Client is the bearer-token HTTP wrapper every domain call goes through.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          *Store
	onUnauthorized func()
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	store := cfg.Store
	if store == nil {
		store = NewStore(nil)
	}

	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/") + "/api",
		httpClient:     httpClient,
		store:          store,
		onUnauthorized: cfg.OnUnauthorized,
	}, nil
}

func (c *Client) Store() *Store { return c.store }

// BaseURL is the API root including the /api prefix.
func (c *Client) BaseURL() string { return c.baseURL }

// Meta is the pagination block of list responses.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type Page[T any] struct {
	Items []T
	Meta  Meta
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Meta    *Meta           `json:"meta"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (*Meta, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	_, err := c.doRaw(ctx, method, path, nil, reader, "application/json", out)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out any) (*Meta, error) {
	return c.doRaw(ctx, method, path, query, body, "", out)
}

func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) (*Meta, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	token := c.store.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = fallbackMessage
		}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			_ = c.store.ClearSession()
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Meta, nil
}

// sendMultipart posts form fields plus files under the given field name.
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields map[string]string, fileField string, files []string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, name := range files {
		if err := attachFile(mw, fileField, name); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	_, err := c.doRaw(ctx, method, path, nil, &buf, mw.FormDataContentType(), out)
	return err
}

func attachFile(mw *multipart.Writer, field, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	w, err := mw.CreateFormFile(field, filepath.Base(name))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	return q
}
