package httpclient

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
)

// ErrNotAuthenticated is returned when a call needs a token and none is set
var ErrNotAuthenticated = errors.New("client not authenticated - call Authenticate() first")

// Client provides an HTTP client for the dynchan API
type Client struct {
	config     Config
	httpClient *http.Client
	token      string
	baseURL    *url.URL
}

// NewClient creates a new HTTP client
func NewClient(config Config) (*Client, error) {
	config.SetDefaults()
	if config.ServerURL == "" {
		return nil, errors.New("ServerURL is required")
	}

	baseURL, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ServerURL: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    baseURL,
	}, nil
}

// Authenticate logs in with the configured client ID and stores the token
func (c *Client) Authenticate(ctx context.Context) error {
	if c.config.ClientID == "" {
		return errors.New("ClientID is required to authenticate")
	}
	var resp AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"clientId": c.config.ClientID}, &resp, false); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	c.token = resp.Token
	return nil
}

// EnableService registers key (decimal or 0x hex) on the server
func (c *Client) EnableService(ctx context.Context, key string) (*ServiceInfo, error) {
	var resp ServiceInfo
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/services", serviceRequest{Key: key}, &resp, true); err != nil {
		return nil, fmt.Errorf("failed to enable service: %w", err)
	}
	return &resp, nil
}

// DisableService withdraws key
func (c *Client) DisableService(ctx context.Context, key string) error {
	if err := c.doRequest(ctx, http.MethodDelete, servicePath(key, ""), nil, nil, true); err != nil {
		return fmt.Errorf("failed to disable service: %w", err)
	}
	return nil
}

// Connect opens a channel for key to peer. A refused connection is not an
// error; inspect ConnectResponse.Connected.
func (c *Client) Connect(ctx context.Context, key, peer, addressType string) (*ConnectResponse, error) {
	var resp ConnectResponse
	req := connectRequest{Peer: peer, AddressType: addressType}
	if err := c.doRequest(ctx, http.MethodPost, servicePath(key, "connect"), req, &resp, true); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &resp, nil
}

// CloseChannel closes the channel open for key
func (c *Client) CloseChannel(ctx context.Context, key string) error {
	if err := c.doRequest(ctx, http.MethodPost, servicePath(key, "close"), nil, nil, true); err != nil {
		return fmt.Errorf("failed to close channel: %w", err)
	}
	return nil
}

// SendPacket transmits payload on the channel open for key
func (c *Client) SendPacket(ctx context.Context, key string, payload []byte) error {
	if err := c.doRequest(ctx, http.MethodPost, servicePath(key, "packets"), sendRequest{Payload: payload}, nil, true); err != nil {
		return fmt.Errorf("failed to send packet: %w", err)
	}
	return nil
}

// ListServices returns every enabled service key
func (c *Client) ListServices(ctx context.Context) ([]ServiceInfo, error) {
	var resp servicesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/services", nil, &resp, true); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return resp.Services, nil
}

// GetHealth gets the server health status
func (c *Client) GetHealth(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, &resp, false); err != nil {
		return nil, fmt.Errorf("failed to get health: %w", err)
	}
	return &resp, nil
}

// IsAuthenticated returns whether the client has a token
func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

// GetToken returns the current authentication token
func (c *Client) GetToken() string {
	return c.token
}

// SetToken sets the authentication token (useful for token reuse)
func (c *Client) SetToken(token string) {
	c.token = token
}

func servicePath(key, action string) string {
	p := "/api/v1/services/" + url.PathEscape(key)
	if action != "" {
		p += "/" + action
	}
	return p
}

// doRequest performs an HTTP request with optional authentication
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody, respBody interface{}, requireAuth bool) error {
	if requireAuth && c.token == "" {
		return ErrNotAuthenticated
	}

	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(&url.URL{Path: path}).String(), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if respBody != nil && len(body) > 0 {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
