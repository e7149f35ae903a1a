// Package api is a thin client for the external SouP HTTP API. Everything
// server-side (sessions, accounts, project storage) lives behind it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnauthorized is returned when the API rejects the forwarded session.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrUnavailable wraps transport failures and 5xx responses.
	ErrUnavailable = errors.New("api: unavailable")
)

const maxBodySize = 2 * 1024 * 1024

// AuthData is the body of GET /auth.
type AuthData struct {
	Success      bool   `json:"success"`
	UserID       int64  `json:"user_id,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Username     string `json:"username,omitempty"`
}

// Draft is a project document submitted from the editor screen.
type Draft struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

// SaveResult is the body of a successful POST /projects.
type SaveResult struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client talks to the SouP API, forwarding the browser's cookie header.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Auth asks the API who owns cookie. An unauthenticated session is not an
// error: the API answers {"success": false}.
func (c *Client) Auth(ctx context.Context, cookie string) (AuthData, error) {
	var data AuthData
	if err := c.do(ctx, http.MethodGet, "/auth", cookie, nil, &data); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return AuthData{Success: false}, nil
		}
		return AuthData{}, err
	}
	return data, nil
}

// SaveProject forwards a draft to the API on behalf of the cookie owner.
func (c *Client) SaveProject(ctx context.Context, cookie string, draft Draft) (SaveResult, error) {
	var res SaveResult
	if err := c.do(ctx, http.MethodPost, "/projects", cookie, draft, &res); err != nil {
		return SaveResult{}, err
	}
	if !res.Success {
		return res, fmt.Errorf("save project: %s", res.Message)
	}
	return res, nil
}

// Ping checks that the API answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/auth", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, cookie string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, path, resp.StatusCode)
	case resp.StatusCode >= 300:
		return fmt.Errorf("api: %s %s returned %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
