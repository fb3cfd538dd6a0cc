// Package backend is the HTTP client for the Momentam REST backend. All
// business data lives behind it; the admin server itself holds no database.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/momentam/admin-server/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every backend call. Login and protected fetches must
// never block indefinitely.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNoToken is returned when a protected call is attempted without an
	// access token. The request never leaves the process.
	ErrNoToken = errors.New("no access token for protected backend call")

	// ErrUnauthorized is returned when the backend rejects the bearer token
	// with a 401. Callers surface it as a session-expired condition.
	ErrUnauthorized = errors.New("backend rejected access token")
)

// APIError is a non-401 4xx rejection from the backend, carrying the
// backend-provided message when one was supplied.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// apiErrorBody covers both rejection shapes the backend emits.
type apiErrorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func (b apiErrorBody) message() string {
	if b.Message != "" {
		return b.Message
	}
	if len(b.Errors) > 0 {
		return b.Errors[0]
	}
	return ""
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client talks to the Momentam REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    metrics.Collector
}

// Option modifies a Client at construction time.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// New creates a backend client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[backend.New] base URL is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		metrics:    metrics.Nop{},
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// Login exchanges an email/password pair for a backend-issued token set.
// A 4xx rejection comes back as *APIError; transport failures and 5xx come
// back as plain errors for the caller to classify.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordBackendLatency(time.Since(start))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] backend call")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var errBody apiErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody) // message is optional
		return nil, &APIError{Status: resp.StatusCode, Message: errBody.message()}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.Errorf("[Client.Login] backend returned %d", resp.StatusCode)
	}

	var out LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] decode response")
	}
	return &out, nil
}

// GetJSON performs an authorized GET against a protected backend path,
// attaching the access token as a bearer credential and decoding the
// response into out. An empty token fails fast with ErrNoToken, the request
// is never issued.
func (c *Client) GetJSON(ctx context.Context, token, path string, out any) error {
	if token == "" {
		return ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrapf(err, "[Client.GetJSON] build request for %s", path)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordBackendLatency(time.Since(start))
	if err != nil {
		return errors.Wrapf(err, "[Client.GetJSON] backend call for %s", path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var errBody apiErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{Status: resp.StatusCode, Message: errBody.message()}
	case resp.StatusCode != http.StatusOK:
		return errors.Errorf("[Client.GetJSON] backend returned %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.GetJSON] decode %s response", path)
	}
	return nil
}

func pagedPath(path string, page int) string {
	if page <= 1 {
		return path
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return path + "?" + q.Encode()
}

// Users lists marketplace user accounts.
func (c *Client) Users(ctx context.Context, token string, page int) (*UsersPage, error) {
	out := new(UsersPage)
	if err := c.GetJSON(ctx, token, pagedPath("/admin/users", page), out); err != nil {
		return nil, err
	}
	return out, nil
}

// Photographers lists photographer profiles.
func (c *Client) Photographers(ctx context.Context, token string, page int) (*PhotographersPage, error) {
	out := new(PhotographersPage)
	if err := c.GetJSON(ctx, token, pagedPath("/admin/photographers", page), out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bookings lists bookings.
func (c *Client) Bookings(ctx context.Context, token string, page int) (*BookingsPage, error) {
	out := new(BookingsPage)
	if err := c.GetJSON(ctx, token, pagedPath("/admin/bookings", page), out); err != nil {
		return nil, err
	}
	return out, nil
}

// Photos lists delivered photos.
func (c *Client) Photos(ctx context.Context, token string, page int) (*PhotosPage, error) {
	out := new(PhotosPage)
	if err := c.GetJSON(ctx, token, pagedPath("/admin/photos", page), out); err != nil {
		return nil, err
	}
	return out, nil
}

// FinanceSummary fetches the aggregated finance view.
func (c *Client) FinanceSummary(ctx context.Context, token string) (*FinanceSummary, error) {
	out := new(FinanceSummary)
	if err := c.GetJSON(ctx, token, "/admin/finances/summary", out); err != nil {
		return nil, err
	}
	return out, nil
}
