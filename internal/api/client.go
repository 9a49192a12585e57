// Package api is the HTTP client for the financial-administration backend.
// Every call takes a context, sends and receives JSON, and turns non-2xx or
// {"success": false} responses into *Error values carrying the server message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adminfin-dev/adminfin/internal/logging"
)

// DefaultPeoplePath is the collection path of party records.
const DefaultPeoplePath = "/api/pessoas"

// RequestIDHeader carries a per-request id that is also logged.
const RequestIDHeader = "X-Request-ID"

// Client talks to the backend REST API.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	indexTimeout time.Duration
	logger       *logrus.Logger
	peoplePath   string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithIndexTimeout bounds RAGIndex, which can run much longer than other calls.
func WithIndexTimeout(d time.Duration) Option {
	return func(c *Client) { c.indexTimeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithPeoplePath overrides DefaultPeoplePath.
func WithPeoplePath(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.peoplePath = "/" + strings.Trim(p, "/")
		}
	}
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL:      u,
		http:         &http.Client{},
		indexTimeout: 10 * time.Minute,
		logger:       logging.Discard(),
		peoplePath:   DefaultPeoplePath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Error is a failed call. Message is the server-supplied text when there is one.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// envelope is the {success, data, message, error} wrapper of /api/* responses.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// send performs one request and returns the status and raw body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	log := c.logger.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}
	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debug("request done")
	return resp.StatusCode, raw, nil
}

// call performs an /api/* request and unwraps the envelope. When out is
// non-nil the data field is decoded into it. The envelope message is returned
// so callers can show it after a successful mutation.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) (string, error) {
	status, raw, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return "", err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if !ok(status) {
			return "", c.fail(method, path, status, "")
		}
		return "", fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	if !ok(status) || !env.Success {
		return "", c.fail(method, path, status, firstNonEmpty(env.Error, env.Message))
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decoding %s %s data: %w", method, path, err)
		}
	}
	return env.Message, nil
}

// callJSON performs a request whose response body is the payload itself
// (lookup endpoints, RAG). Non-2xx statuses become *Error using the body's
// "error" or "message" field.
func (c *Client) callJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	status, raw, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if !ok(status) {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return c.fail(method, path, status, firstNonEmpty(env.Error, env.Message))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) fail(method, path string, status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": status,
	}).Info(message)
	return &Error{Method: method, Path: path, Status: status, Message: message}
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
