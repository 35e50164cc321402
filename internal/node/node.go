// Package node assembles the link layer, channel registry, inbound bridge and
// control surfaces into one runnable daemon.
package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ichannel "github.com/rmacdonaldsmith/dynchan-go/internal/channel"
	"github.com/rmacdonaldsmith/dynchan-go/internal/config"
	"github.com/rmacdonaldsmith/dynchan-go/internal/facade"
	"github.com/rmacdonaldsmith/dynchan-go/internal/grpcapi"
	"github.com/rmacdonaldsmith/dynchan-go/internal/httpapi"
	iinbound "github.com/rmacdonaldsmith/dynchan-go/internal/inbound"
	sim "github.com/rmacdonaldsmith/dynchan-go/internal/linklayer"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

const shutdownTimeout = 5 * time.Second

var (
	// ErrNodeClosed is returned when using a closed node
	ErrNodeClosed = errors.New("node is closed")
	// ErrAlreadyRunning is returned by a second Run
	ErrAlreadyRunning = errors.New("node is already running")
)

// Node owns every component of a daemon. Components are created by New and
// torn down in reverse order by Close.
type Node struct {
	mu     sync.Mutex
	config *config.Config
	logger *zap.Logger

	fabric   *sim.Fabric
	host     *sim.Manager
	peers    []*sim.EchoPeer
	loop     *sim.EventLoop
	queue    *iinbound.Queue
	registry *ichannel.Registry
	facade   *facade.Service
	grpc     *grpcapi.Server
	http     *httpapi.Server

	running bool
	closed  bool
	stop    context.CancelFunc
}

// New creates the node's components. Nothing listens until Run.
func New(cfg *config.Config, logger *zap.Logger) (*Node, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Node{config: cfg, logger: logger.Named("node")}
	if err := n.build(logger); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) build(logger *zap.Logger) error {
	cfg := n.config
	local, err := cfg.LocalAddress()
	if err != nil {
		return err
	}

	if n.fabric, err = sim.NewFabric(cfg.LinkConfig(), logger); err != nil {
		return fmt.Errorf("failed to create link layer: %w", err)
	}
	if n.host, err = n.fabric.NewManager(local); err != nil {
		return fmt.Errorf("failed to attach local device: %w", err)
	}
	for i, pc := range cfg.Peers {
		keys, err := pc.PeerKeys()
		if err != nil {
			return err
		}
		addr, err := linklayer.ParseAddress(pc.Address, linklayer.RandomDeviceAddress)
		if err != nil {
			return err
		}
		peer, err := sim.NewEchoPeer(n.fabric, addr, keys, pc.Echo, logger)
		if err != nil {
			return fmt.Errorf("failed to attach peers[%d]: %w", i, err)
		}
		n.peers = append(n.peers, peer)
	}

	n.loop = sim.NewEventLoop("host", logger)
	if n.queue, err = iinbound.NewQueue(cfg.InboundConfig(), logger); err != nil {
		return fmt.Errorf("failed to create inbound queue: %w", err)
	}
	if n.registry, err = ichannel.NewRegistry(n.host, n.loop, n.queue, cfg.ChannelConfig(), logger); err != nil {
		return fmt.Errorf("failed to create registry: %w", err)
	}
	if n.facade, err = facade.NewService(facade.Options{
		NodeID:   cfg.NodeID,
		Local:    local,
		Registry: n.registry,
		Bridge:   n.queue,
		Logger:   logger,
	}); err != nil {
		return fmt.Errorf("failed to create facade: %w", err)
	}

	n.grpc = grpcapi.New(n.facade, logger)
	if cfg.HTTP.Enabled {
		if n.http, err = httpapi.NewServer(n.facade, cfg.HTTPServerConfig(), logger); err != nil {
			return fmt.Errorf("failed to create http server: %w", err)
		}
	}
	return nil
}

// Facade returns the control surface shared by the transports
func (n *Node) Facade() *facade.Service {
	return n.facade
}

// Peers returns the simulated remote devices
func (n *Node) Peers() []*sim.EchoPeer {
	return n.peers
}

// EnableConfiguredServices enables every key listed in the configuration
func (n *Node) EnableConfiguredServices(ctx context.Context) error {
	keys, err := n.config.ServiceKeys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := n.facade.EnableService(ctx, key); err != nil {
			return fmt.Errorf("failed to enable %s: %w", key, err)
		}
		n.logger.Info("service enabled", zap.Stringer("key", key))
	}
	return nil
}

// Run enables the configured services and serves the control surfaces until
// ctx is done or a server fails.
func (n *Node) Run(ctx context.Context) error {
	grpcLis, err := net.Listen("tcp", n.config.GRPC.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", n.config.GRPC.Listen, err)
	}
	var httpLis net.Listener
	if n.http != nil {
		if httpLis, err = net.Listen("tcp", n.config.HTTP.Listen); err != nil {
			grpcLis.Close()
			return fmt.Errorf("listen %s: %w", n.config.HTTP.Listen, err)
		}
	}
	return n.Serve(ctx, grpcLis, httpLis)
}

// Serve is Run over caller-supplied listeners. httpLis may be nil when the
// HTTP surface is disabled.
func (n *Node) Serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	n.mu.Lock()
	switch {
	case n.closed:
		n.mu.Unlock()
		return ErrNodeClosed
	case n.running:
		n.mu.Unlock()
		return ErrAlreadyRunning
	}
	n.running = true
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	n.stop = cancel
	n.mu.Unlock()

	if err := n.EnableConfiguredServices(ctx); err != nil {
		grpcLis.Close()
		if httpLis != nil {
			httpLis.Close()
		}
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return n.grpc.Serve(grpcLis)
	})
	if n.http != nil && httpLis != nil {
		g.Go(func() error {
			return n.http.Serve(httpLis)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		n.stopServers()
		return nil
	})

	n.logger.Info("node running",
		zap.String("node_id", n.config.NodeID),
		zap.Stringer("address", n.host.LocalAddress()),
		zap.Int("peers", len(n.peers)))
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (n *Node) stopServers() {
	if n.http != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := n.http.Shutdown(shutdownCtx); err != nil {
			n.logger.Warn("http shutdown", zap.Error(err))
		}
	}
	n.grpc.Close()
}

// Close tears down every component. It is safe to call more than once.
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	stop := n.stop
	n.mu.Unlock()

	if stop != nil {
		stop()
	}

	if n.grpc != nil {
		n.grpc.Close()
	}
	if n.registry != nil {
		n.registry.Close()
	}
	if n.queue != nil {
		n.queue.Close()
	}
	for _, p := range n.peers {
		p.Close()
	}
	if n.loop != nil {
		n.loop.Close()
	}
	if n.fabric != nil {
		return n.fabric.Close()
	}
	return nil
}
