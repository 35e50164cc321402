package httpapi

import (
	"time"

	"github.com/rmacdonaldsmith/dynchan-go/internal/facade"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
)

// Request/Response types for the HTTP API

// AuthRequest represents a login request
type AuthRequest struct {
	ClientID string `json:"clientId"`
}

// AuthResponse represents a login response
type AuthResponse struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"clientId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ServiceRequest enables a service key. Key accepts decimal or 0x hex.
type ServiceRequest struct {
	Key string `json:"key"`
}

// ServiceResponse describes one enabled service key
type ServiceResponse struct {
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

// ServicesListResponse lists every enabled service key
type ServicesListResponse struct {
	Services []ServiceResponse `json:"services"`
}

// ConnectRequest opens a channel to a peer
type ConnectRequest struct {
	Peer        string `json:"peer"`
	AddressType string `json:"addressType,omitempty"` // "public" or "random" (default)
}

// ConnectResponse reports the link layer's answer to a connect
type ConnectResponse struct {
	Key       string `json:"key"`
	Connected bool   `json:"connected"`
	Result    uint16 `json:"result"`
	Reason    string `json:"reason"`
}

// SendRequest carries one outbound packet. Exactly one of Payload
// (base64 in JSON) or Hex must be set.
type SendRequest struct {
	Payload []byte `json:"payload,omitempty"`
	Hex     string `json:"hex,omitempty"`
}

// PacketMessage is one inbound packet on the SSE stream
type PacketMessage struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Sequence  uint64    `json:"sequence"`
	Payload   []byte    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Healthy      bool         `json:"healthy"`
	NodeID       string       `json:"nodeId,omitempty"`
	LocalAddress string       `json:"localAddress,omitempty"`
	Services     int          `json:"services"`
	OpenChannels int          `json:"openChannels"`
	Inbound      InboundStats `json:"inbound"`
	Uptime       string       `json:"uptime"`
}

// InboundStats mirrors the bridge counters
type InboundStats struct {
	Pushed    uint64 `json:"pushed"`
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
	Pending   int    `json:"pending"`
	Capacity  int    `json:"capacity"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Reason  string `json:"reason,omitempty"`
}

// NewServiceResponse converts a helper snapshot
func NewServiceResponse(info channel.Info) ServiceResponse {
	resp := ServiceResponse{
		Key:             info.Key.String(),
		State:           info.State.String(),
		MTU:             info.MTU,
		LastResult:      info.LastResult.String(),
		SendInFlight:    info.SendInFlight,
		PacketsSent:     info.PacketsSent,
		PacketsReceived: info.PacketsReceived,
	}
	if !info.Remote.IsZero() {
		resp.PeerAddress = info.Remote.String()
	}
	if info.HasDisconnected {
		resp.LastDisconnect = info.LastDisconnect.String()
	}
	if !info.OpenedAt.IsZero() {
		openedAt := info.OpenedAt
		resp.OpenedAt = &openedAt
	}
	return resp
}

// NewHealthResponse converts the facade health status
func NewHealthResponse(h facade.HealthStatus) HealthResponse {
	resp := HealthResponse{
		Healthy:      h.Healthy,
		NodeID:       h.NodeID,
		Services:     h.Services,
		OpenChannels: h.OpenChannels,
		Inbound:      newInboundStats(h.Inbound),
		Uptime:       h.Uptime.Truncate(time.Second).String(),
	}
	if !h.LocalAddress.IsZero() {
		resp.LocalAddress = h.LocalAddress.String()
	}
	return resp
}

func newInboundStats(s inbound.Statistics) InboundStats {
	return InboundStats{
		Pushed:    s.Pushed,
		Delivered: s.Delivered,
		Dropped:   s.Dropped,
		Pending:   s.Pending,
		Capacity:  s.Capacity,
	}
}
