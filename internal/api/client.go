// Package api is a client for the bill tracker's /api/v2 REST endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	apiPrefix       = "/api/v2"
	headerDatabase  = "X-Database"
	headerRequestID = "X-Request-ID"
	defaultTimeout  = 15 * time.Second
)

type Client struct {
	baseURL  string
	token    string
	database string
	http     *http.Client
	log      *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithDatabase selects the database sent in the X-Database header.
func WithDatabase(name string) Option {
	return func(c *Client) { c.database = name }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for baseURL (scheme and host, without /api/v2).
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Database returns the selected database name.
func (c *Client) Database() string {
	return c.database
}

// envelope is the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do sends one request and decodes the envelope's data into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.database != "" {
		req.Header.Set(headerDatabase, c.database)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, RequestID: requestID}
		if decodeErr == nil {
			apiErr.Message = env.Error
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, decodeErr)
	}
	if !env.Success {
		return &Error{StatusCode: resp.StatusCode, Message: env.Error, RequestID: requestID}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decoding data: %w", method, path, err)
	}
	return nil
}
