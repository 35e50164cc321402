package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// Service translates control requests into registry and helper calls.
// It keeps no state of its own; transports share one instance.
type Service struct {
	nodeID   string
	local    linklayer.Address
	registry channel.Registry
	bridge   inbound.Bridge
	logger   *zap.Logger
	started  time.Time
}

// Options configures a Service
type Options struct {
	NodeID   string
	Local    linklayer.Address
	Registry channel.Registry
	Bridge   inbound.Bridge
	Logger   *zap.Logger
}

// NewService creates the control surface over a registry and bridge
func NewService(opts Options) (*Service, error) {
	if opts.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if opts.Bridge == nil {
		return nil, errors.New("bridge is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		nodeID:   opts.NodeID,
		local:    opts.Local,
		registry: opts.Registry,
		bridge:   opts.Bridge,
		logger:   logger.Named("facade"),
		started:  time.Now().UTC(),
	}, nil
}

// EnableService registers key and creates its helper
func (s *Service) EnableService(ctx context.Context, key linklayer.ServiceKey) error {
	if key == 0 {
		return fmt.Errorf("%w: service key cannot be zero", ErrInvalidArgument)
	}
	err := s.registry.Enable(ctx, key)
	s.logResult("enable", key, err)
	return err
}

// DisableService destroys the helper for key
func (s *Service) DisableService(ctx context.Context, key linklayer.ServiceKey) error {
	err := s.registry.Disable(ctx, key)
	s.logResult("disable", key, err)
	return err
}

// SetService enables or disables key
func (s *Service) SetService(ctx context.Context, key linklayer.ServiceKey, enabled bool) error {
	if enabled {
		return s.EnableService(ctx, key)
	}
	return s.DisableService(ctx, key)
}

// OpenChannel connects key to the device at peer. The returned result is the
// link layer's verbatim answer; it is meaningful when err is nil or a
// *channel.ConnectError.
func (s *Service) OpenChannel(ctx context.Context, key linklayer.ServiceKey, peer string, peerType linklayer.AddressType) (linklayer.ConnectionResult, error) {
	addr, err := linklayer.ParseAddress(peer, peerType)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	h, err := s.registry.Lookup(key)
	if err != nil {
		return 0, err
	}
	result, err := h.Connect(ctx, addr)
	s.logResult("open", key, err, zap.Stringer("peer", addr), zap.Stringer("result", result))
	return result, err
}

// CloseChannel closes the channel open for key
func (s *Service) CloseChannel(ctx context.Context, key linklayer.ServiceKey) error {
	h, err := s.registry.Lookup(key)
	if err != nil {
		return err
	}
	err = h.Close()
	s.logResult("close", key, err)
	return err
}

// SendPacket transmits payload on the channel open for key. An empty payload
// is a valid zero-length packet.
func (s *Service) SendPacket(ctx context.Context, key linklayer.ServiceKey, payload []byte) error {
	h, err := s.registry.Lookup(key)
	if err != nil {
		return err
	}
	err = h.Send(ctx, payload)
	s.logResult("send", key, err, zap.Int("bytes", len(payload)))
	return err
}

// StreamInbound hands received packets to fn until ctx is done or fn fails.
// Consumers share one queue; each packet is delivered to exactly one of them.
func (s *Service) StreamInbound(ctx context.Context, fn func(*inbound.Event) error) error {
	err := s.bridge.RunLoop(ctx, fn)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ListServices returns a snapshot of every enabled key
func (s *Service) ListServices() []channel.Info {
	return s.registry.Snapshot()
}

// HealthStatus summarises the facade
type HealthStatus struct {
	Healthy      bool
	NodeID       string
	LocalAddress linklayer.Address
	Services     int
	OpenChannels int
	Inbound      inbound.Statistics
	Uptime       time.Duration
}

// Health returns the facade's current status
func (s *Service) Health() HealthStatus {
	infos := s.registry.Snapshot()
	open := 0
	for _, info := range infos {
		if info.State == channel.StateOpen {
			open++
		}
	}
	return HealthStatus{
		Healthy:      true,
		NodeID:       s.nodeID,
		LocalAddress: s.local,
		Services:     len(infos),
		OpenChannels: open,
		Inbound:      s.bridge.GetStatistics(),
		Uptime:       time.Since(s.started),
	}
}

func (s *Service) logResult(op string, key linklayer.ServiceKey, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Stringer("key", key), zap.Stringer("code", CodeOf(err)))
	if err != nil {
		s.logger.Info("request failed", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Debug("request complete", fields...)
}
