package httpclient

import (
	"fmt"
	"time"
)

// Config holds client configuration
type Config struct {
	// ServerURL is the base URL of the HTTP API (e.g., "http://localhost:8081")
	ServerURL string

	// ClientID identifies this client at login
	ClientID string

	// Timeout for non-streaming requests
	Timeout time.Duration
}

// SetDefaults sets reasonable default values for the config
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// AuthResponse represents the response from authentication
type AuthResponse struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"clientId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ServiceInfo describes one enabled service key
type ServiceInfo struct {
	Key             string     `json:"key"`
	State           string     `json:"state"`
	PeerAddress     string     `json:"peerAddress,omitempty"`
	MTU             int        `json:"mtu,omitempty"`
	LastResult      string     `json:"lastResult"`
	LastDisconnect  string     `json:"lastDisconnect,omitempty"`
	SendInFlight    bool       `json:"sendInFlight"`
	PacketsSent     uint64     `json:"packetsSent"`
	PacketsReceived uint64     `json:"packetsReceived"`
	OpenedAt        *time.Time `json:"openedAt,omitempty"`
}

type servicesResponse struct {
	Services []ServiceInfo `json:"services"`
}

type serviceRequest struct {
	Key string `json:"key"`
}

type connectRequest struct {
	Peer        string `json:"peer"`
	AddressType string `json:"addressType,omitempty"`
}

// ConnectResponse reports the link layer's answer to a connect
type ConnectResponse struct {
	Key       string `json:"key"`
	Connected bool   `json:"connected"`
	Result    uint16 `json:"result"`
	Reason    string `json:"reason"`
}

type sendRequest struct {
	Payload []byte `json:"payload"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Healthy      bool   `json:"healthy"`
	NodeID       string `json:"nodeId,omitempty"`
	LocalAddress string `json:"localAddress,omitempty"`
	Services     int    `json:"services"`
	OpenChannels int    `json:"openChannels"`
	Inbound      struct {
		Pushed    uint64 `json:"pushed"`
		Delivered uint64 `json:"delivered"`
		Dropped   uint64 `json:"dropped"`
		Pending   int    `json:"pending"`
		Capacity  int    `json:"capacity"`
	} `json:"inbound"`
	Uptime string `json:"uptime"`
}

// PacketMessage is one inbound packet received over the SSE stream
type PacketMessage struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Sequence  uint64    `json:"sequence"`
	Payload   []byte    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int    `json:"code"`
	Status     string `json:"error"`
	Message    string `json:"message"`
	Reason     string `json:"reason,omitempty"`
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("API error (%d, %s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}
