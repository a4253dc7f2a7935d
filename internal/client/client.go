// Package client talks to a file interest server over HTTP and WebSocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/opencontainers/go-digest"

	"github.com/kal997/file-interest-server/internal/api"
	"github.com/kal997/file-interest-server/internal/models"
)

var (
	// ErrNotFound is returned when the requested file does not exist
	ErrNotFound = errors.New("file not found")

	// ErrInvalidDuration is returned when an interest duration is not positive
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidFilename is returned when the server rejects a filename
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrTooLarge is returned when an upload exceeds the server limit
	ErrTooLarge = errors.New("file too large")

	// ErrDigestMismatch is returned when downloaded content does not match its digest
	ErrDigestMismatch = errors.New("digest mismatch")
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is maps server error codes onto the package sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == api.CodeNotFound
	case ErrInvalidDuration:
		return e.Code == api.CodeInvalidDuration
	case ErrInvalidFilename:
		return e.Code == api.CodeInvalidFilename
	case ErrTooLarge:
		return e.Code == api.CodeTooLarge
	}
	return false
}

// Client is a typed client of the REST API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at serverURL, e.g. http://localhost:18812
func New(serverURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		dialer:     websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Upload sends content as name and returns how many subscribers were notified
func (c *Client) Upload(ctx context.Context, name string, content []byte) (int, error) {
	var out api.UploadResponse
	err := c.do(ctx, http.MethodPost, "/files", api.UploadRequest{Filename: name, Data: content}, &out)
	if err != nil {
		return 0, err
	}
	return out.Notified, nil
}

// List returns the stored file names
func (c *Client) List(ctx context.Context) ([]string, error) {
	var out api.ListResponse
	if err := c.do(ctx, http.MethodGet, "/files", nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Download fetches name and checks the content against the digest the server reported
func (c *Client) Download(ctx context.Context, name string) (*api.DownloadResponse, error) {
	var out api.DownloadResponse
	if err := c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}

	if out.Digest != "" {
		d, err := digest.Parse(out.Digest)
		if err != nil {
			return nil, fmt.Errorf("server sent invalid digest %q: %w", out.Digest, err)
		}
		if d != d.Algorithm().FromBytes(out.Data) {
			return nil, fmt.Errorf("%w: %s", ErrDigestMismatch, name)
		}
	}
	if out.Data == nil {
		out.Data = []byte{}
	}
	return &out, nil
}

// RegisterInterest subscribes to name for durationSeconds
func (c *Client) RegisterInterest(ctx context.Context, name string, durationSeconds int64) (models.Subscription, error) {
	var out models.Subscription
	err := c.do(ctx, http.MethodPost, "/interests", api.InterestRequest{Filename: name, Duration: durationSeconds}, &out)
	return out, err
}

// CancelInterest drops every subscription for name
func (c *Client) CancelInterest(ctx context.Context, name string) (int, error) {
	var out api.CancelResponse
	if err := c.do(ctx, http.MethodDelete, "/interests/"+url.PathEscape(name), nil, &out); err != nil {
		return 0, err
	}
	return out.Cancelled, nil
}

// PendingInterests returns the active subscription count for name
func (c *Client) PendingInterests(ctx context.Context, name string) (int, error) {
	var out api.PendingResponse
	if err := c.do(ctx, http.MethodGet, "/interests/"+url.PathEscape(name), nil, &out); err != nil {
		return 0, err
	}
	return out.Pending, nil
}

// Health checks the server and its store
func (c *Client) Health(ctx context.Context) error {
	var out api.HealthResponse
	return c.do(ctx, http.MethodGet, "/health", nil, &out)
}

// Watch streams notifications for filenames (all files when empty) to fn
// until ctx is cancelled or the connection fails
func (c *Client) Watch(ctx context.Context, filenames []string, fn func(models.NotificationEvent)) error {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += api.NotificationsPath
	q := url.Values{}
	for _, name := range filenames {
		q.Add("filename", name)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to open notification stream: %s: %w", resp.Status, err)
		}
		return fmt.Errorf("failed to open notification stream: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var event models.NotificationEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("notification stream failed: %w", err)
		}
		fn(event)
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+api.APIPath+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body api.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
