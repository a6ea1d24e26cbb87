package connection

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/0823nobuo-png/System-Validator/internal/infra/buildinfo"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// unixScheme selects a Unix domain socket, as in unix:///run/sv.sock.
const unixScheme = "unix://"

// Client talks to a status panel.
type Client struct {
	baseURL string
	socket  string
	tls     *tls.Config
	client  *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTLSConfig sets the TLS config for https:// servers.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) {
		c.tls = cfg
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// NewClient creates a client for server. A bare host:port gets an
// http:// scheme; unix:// addresses a panel's local socket.
func NewClient(server string, opts ...ClientOption) *Client {
	c := &Client{client: &http.Client{Timeout: DefaultTimeout}}

	switch {
	case strings.HasPrefix(server, unixScheme):
		c.socket = strings.TrimPrefix(server, unixScheme)
		c.baseURL = "http://unix"
	case strings.HasPrefix(server, "http://"), strings.HasPrefix(server, "https://"):
		c.baseURL = strings.TrimRight(server, "/")
	default:
		c.baseURL = "http://" + strings.TrimRight(server, "/")
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.socket != "" || c.tls != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = c.tls
		if c.socket != "" {
			socket := c.socket
			transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			}
		}
		c.client.Transport = transport
	}
	return c
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path)
}

// Post performs a POST request without a body.
func (c *Client) Post(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path)
}

func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.Name+"/"+buildinfo.Version)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Target describes where requests go, for messages.
func (c *Client) Target() string {
	if c.socket != "" {
		return unixScheme + c.socket
	}
	return c.baseURL
}

// APIError is an error envelope returned by the panel.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
	Details   json.RawMessage
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// envelope is the panel's response wrapper.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Details   json.RawMessage `json:"details"`
}

// ParseResponse decodes the envelope's data into target and closes
// the body. Responses with status >= 400 yield an *APIError.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code = env.Code
			apiErr.Message = env.Message
			apiErr.RequestID = env.RequestID
			apiErr.Details = env.Details
		}
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("parse response: %w", decodeErr)
	}
	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}
	return nil
}
