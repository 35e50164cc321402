package httpapi

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/internal/facade"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// maxBodyBytes bounds request bodies; packets are far smaller
const maxBodyBytes = 1 << 20

// Handlers contains all HTTP request handlers
type Handlers struct {
	svc          *facade.Service
	jwtAuth      *JWTAuth
	adminClients map[string]bool
	keepAlive    time.Duration
	logger       *zap.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *facade.Service, jwtAuth *JWTAuth, config Config, logger *zap.Logger) *Handlers {
	admins := make(map[string]bool, len(config.AdminClients))
	for _, id := range config.AdminClients {
		admins[id] = true
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		svc:          svc,
		jwtAuth:      jwtAuth,
		adminClients: admins,
		keepAlive:    config.KeepAlive,
		logger:       logger,
	}
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.ClientID) < 2 {
		writeError(w, "clientId must be at least 2 characters", http.StatusBadRequest)
		return
	}

	// No credential store: the client ID alone decides admin rights
	token, expiresAt, err := h.jwtAuth.GenerateToken(req.ClientID, h.adminClients[req.ClientID])
	if err != nil {
		writeError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, AuthResponse{Token: token, ClientID: req.ClientID, ExpiresAt: expiresAt}, http.StatusOK)
}

// Service endpoints

// ListServices handles GET /api/v1/services
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	infos := h.svc.ListServices()
	resp := ServicesListResponse{Services: make([]ServiceResponse, 0, len(infos))}
	for _, info := range infos {
		resp.Services = append(resp.Services, NewServiceResponse(info))
	}
	writeJSON(w, resp, http.StatusOK)
}

// EnableService handles POST /api/v1/services
func (h *Handlers) EnableService(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	key, err := linklayer.ParseServiceKey(req.Key)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.EnableService(r.Context(), key); err != nil {
		h.writeFacadeError(w, err)
		return
	}
	writeJSON(w, h.serviceInfo(key), http.StatusCreated)
}

// DisableService handles DELETE /api/v1/services/{key}
func (h *Handlers) DisableService(w http.ResponseWriter, r *http.Request) {
	key, _ := GetServiceKey(r)
	if err := h.svc.DisableService(r.Context(), key); err != nil {
		h.writeFacadeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Connect handles POST /api/v1/services/{key}/connect. A refusal by the
// peer is a successful request carrying the link layer's result.
func (h *Handlers) Connect(w http.ResponseWriter, r *http.Request) {
	key, _ := GetServiceKey(r)
	var req ConnectRequest
	if !h.decode(w, r, &req) {
		return
	}
	addrType, err := parseAddressType(req.AddressType)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.OpenChannel(r.Context(), key, req.Peer, addrType)
	var connectErr *channel.ConnectError
	if err != nil && !errors.As(err, &connectErr) {
		h.writeFacadeError(w, err)
		return
	}
	writeJSON(w, ConnectResponse{
		Key:       key.String(),
		Connected: err == nil,
		Result:    uint16(result),
		Reason:    result.String(),
	}, http.StatusOK)
}

// Close handles POST /api/v1/services/{key}/close
func (h *Handlers) Close(w http.ResponseWriter, r *http.Request) {
	key, _ := GetServiceKey(r)
	if err := h.svc.CloseChannel(r.Context(), key); err != nil {
		h.writeFacadeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendPacket handles POST /api/v1/services/{key}/packets
func (h *Handlers) SendPacket(w http.ResponseWriter, r *http.Request) {
	key, _ := GetServiceKey(r)
	var req SendRequest
	if !h.decode(w, r, &req) {
		return
	}
	payload, err := req.bytes()
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.SendPacket(r.Context(), key, payload); err != nil {
		h.writeFacadeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Stream endpoints

// StreamPackets handles GET /api/v1/packets/stream. Concurrent streams
// share the inbound queue, so each packet reaches exactly one of them.
func (h *Handlers) StreamPackets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	consumerID := uuid.NewString()
	logger := h.logger.With(zap.String("consumer", consumerID), zap.String("client", GetClientID(r)))
	logger.Info("packet stream opened")
	defer logger.Info("packet stream closed")

	if _, err := fmt.Fprintf(w, ": connected consumer=%s\n\n", consumerID); err != nil {
		return
	}
	h.streamWithKeepalive(w, r, logger)
}

// streamWithKeepalive forwards inbound packets as SSE messages and pings
// idle connections until the client goes away
func (h *Handlers) streamWithKeepalive(w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	flush := func() {
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
	flush()

	events := make(chan *inbound.Event)
	streamErr := make(chan error, 1)
	go func() {
		streamErr <- h.svc.StreamInbound(ctx, func(ev *inbound.Event) error {
			select {
			case events <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-streamErr:
			if err != nil {
				logger.Warn("inbound stream ended", zap.Error(err))
				_, _ = fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
				flush()
			}
			return

		case <-ticker.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flush()

		case ev := <-events:
			if err := writeSSEMessage(w, PacketMessage{
				ID:        fmt.Sprintf("%s-%d", ev.Key, ev.Sequence),
				Key:       ev.Key.String(),
				Sequence:  ev.Sequence,
				Payload:   ev.Payload,
				Timestamp: ev.Timestamp,
			}); err != nil {
				logger.Warn("dropping packet, client write failed",
					zap.Stringer("key", ev.Key), zap.Uint64("sequence", ev.Sequence), zap.Error(err))
				return
			}
			flush()
		}
	}
}

// Health handles GET /api/v1/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health()
	statusCode := http.StatusOK
	if !health.Healthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, NewHealthResponse(health), statusCode)
}

// Helper methods

func (h *Handlers) serviceInfo(key linklayer.ServiceKey) ServiceResponse {
	for _, info := range h.svc.ListServices() {
		if info.Key == key {
			return NewServiceResponse(info)
		}
	}
	return ServiceResponse{Key: key.String()}
}

// decode reads a JSON body, writing a 400 on failure
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		writeError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeFacadeError maps a facade error onto an HTTP status
func (h *Handlers) writeFacadeError(w http.ResponseWriter, err error) {
	code := facade.CodeOf(err)
	statusCode := httpStatus(code)
	message := err.Error()
	switch code {
	case facade.CodeNotRegistered:
		message = "Psm not registered"
	case facade.CodeNotOpen:
		message = "Channel not open"
	}
	writeJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
		Reason:  code.String(),
	}, statusCode)
}

func httpStatus(code facade.Code) int {
	switch code {
	case facade.CodeOK:
		return http.StatusOK
	case facade.CodeNotRegistered:
		return http.StatusNotFound
	case facade.CodeNotOpen, facade.CodeAlreadyRegistered:
		return http.StatusConflict
	case facade.CodeTimeout:
		return http.StatusGatewayTimeout
	case facade.CodeBusy:
		return http.StatusTooManyRequests
	case facade.CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case facade.CodeInvalidArgument:
		return http.StatusBadRequest
	case facade.CodeConnectFailed, facade.CodeRegistrationFailed:
		return http.StatusBadGateway
	case facade.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseAddressType(s string) (linklayer.AddressType, error) {
	switch s {
	case "", "random":
		return linklayer.RandomDeviceAddress, nil
	case "public":
		return linklayer.PublicDeviceAddress, nil
	default:
		return 0, fmt.Errorf("invalid address type %q", s)
	}
}

func (req SendRequest) bytes() ([]byte, error) {
	switch {
	case len(req.Payload) > 0 && req.Hex != "":
		return nil, errors.New("set payload or hex, not both")
	case req.Hex != "":
		b, err := hex.DecodeString(req.Hex)
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload: %w", err)
		}
		return b, nil
	default:
		return req.Payload, nil
	}
}

// writeSSEMessage writes v as an SSE data message
func writeSSEMessage(w http.ResponseWriter, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE message: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
