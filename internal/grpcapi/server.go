package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/rmacdonaldsmith/dynchan-go/internal/facade"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
	dynchanv1 "github.com/rmacdonaldsmith/dynchan-go/proto/dynchan/v1"
)

// Address types accepted in OpenDynamicChannelRequest
const (
	AddressTypePublic = "public"
	AddressTypeRandom = "random"
)

// Server owns the gRPC server and exposes the facade on it.
type Server struct {
	svc    *facade.Service
	logger *zap.Logger
	grpc   *grpc.Server
	lis    net.Listener
}

// New constructs a gRPC server and registers the control service.
func New(svc *facade.Service, logger *zap.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger.Named("grpc")}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.logUnary)}, opts...)
	s.grpc = grpc.NewServer(opts...)
	dynchanv1.RegisterDynamicChannelFacadeServer(s.grpc, &facadeServer{svc: svc, logger: s.logger})
	return s
}

// Serve serves on lis until Close.
func (s *Server) Serve(lis net.Listener) error {
	s.lis = lis
	s.logger.Info("gRPC server listening", zap.String("address", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server. Open streams are cancelled.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.Stop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("rpc",
		zap.String("method", info.FullMethod),
		zap.Stringer("code", status.Code(err)),
		zap.Duration("duration", time.Since(start)))
	return resp, err
}

// facadeServer adapts facade.Service to the generated service interface
type facadeServer struct {
	dynchanv1.UnimplementedDynamicChannelFacadeServer
	svc    *facade.Service
	logger *zap.Logger
}

var _ dynchanv1.DynamicChannelFacadeServer = (*facadeServer)(nil)

func (f *facadeServer) SetDynamicChannel(ctx context.Context, in *dynchanv1.SetDynamicChannelRequest) (*emptypb.Empty, error) {
	key, err := serviceKey(in.Psm)
	if err != nil {
		return nil, err
	}
	if err := f.svc.SetService(ctx, key, in.Enabled); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (f *facadeServer) OpenDynamicChannel(ctx context.Context, in *dynchanv1.OpenDynamicChannelRequest) (*dynchanv1.OpenDynamicChannelResponse, error) {
	key, err := serviceKey(in.Psm)
	if err != nil {
		return nil, err
	}
	addrType, err := addressType(in.AddressType)
	if err != nil {
		return nil, err
	}
	result, err := f.svc.OpenChannel(ctx, key, in.PeerAddress, addrType)
	if err != nil {
		// A refusal is an answer, not a transport failure
		if r, ok := channel.ConnectResult(err); ok {
			return &dynchanv1.OpenDynamicChannelResponse{Status: uint32(r)}, nil
		}
		return nil, toStatus(err)
	}
	return &dynchanv1.OpenDynamicChannelResponse{Status: uint32(result)}, nil
}

func (f *facadeServer) CloseDynamicChannel(ctx context.Context, in *dynchanv1.CloseDynamicChannelRequest) (*emptypb.Empty, error) {
	key, err := serviceKey(in.Psm)
	if err != nil {
		return nil, err
	}
	if err := f.svc.CloseChannel(ctx, key); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (f *facadeServer) SendDynamicChannelPacket(ctx context.Context, in *dynchanv1.SendDynamicChannelPacketRequest) (*emptypb.Empty, error) {
	key, err := serviceKey(in.Psm)
	if err != nil {
		return nil, err
	}
	if err := f.svc.SendPacket(ctx, key, in.Payload); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (f *facadeServer) ListServices(ctx context.Context, _ *emptypb.Empty) (*dynchanv1.ListServicesResponse, error) {
	infos := f.svc.ListServices()
	resp := &dynchanv1.ListServicesResponse{Services: make([]*dynchanv1.ServiceInfo, 0, len(infos))}
	for _, info := range infos {
		resp.Services = append(resp.Services, ServiceInfoFrom(info))
	}
	return resp, nil
}

func (f *facadeServer) FetchL2capData(_ *emptypb.Empty, stream grpc.ServerStreamingServer[dynchanv1.DataPacket]) error {
	ctx := stream.Context()
	f.logger.Debug("inbound stream attached")
	defer f.logger.Debug("inbound stream detached")

	err := f.svc.StreamInbound(ctx, func(ev *inbound.Event) error {
		return stream.Send(&dynchanv1.DataPacket{
			Psm:       uint32(ev.Key),
			Sequence:  ev.Sequence,
			Payload:   ev.Payload,
			Timestamp: timestamppb.New(ev.Timestamp),
		})
	})
	if err != nil && ctx.Err() == nil {
		return toStatus(err)
	}
	return nil
}

// ServiceInfoFrom converts a helper snapshot to its wire form
func ServiceInfoFrom(info channel.Info) *dynchanv1.ServiceInfo {
	out := &dynchanv1.ServiceInfo{
		Psm:             uint32(info.Key),
		State:           info.State.String(),
		LastResult:      uint32(info.LastResult),
		SendInFlight:    info.SendInFlight,
		PacketsSent:     info.PacketsSent,
		PacketsReceived: info.PacketsReceived,
		Mtu:             uint32(info.MTU),
	}
	if !info.Remote.IsZero() {
		out.PeerAddress = info.Remote.String()
	}
	if !info.OpenedAt.IsZero() {
		out.OpenedAt = timestamppb.New(info.OpenedAt)
	}
	return out
}

func serviceKey(psm uint32) (linklayer.ServiceKey, error) {
	if psm == 0 || psm > 0xFFFF {
		return 0, status.Errorf(codes.InvalidArgument, "invalid psm %d", psm)
	}
	return linklayer.ServiceKey(psm), nil
}

func addressType(s string) (linklayer.AddressType, error) {
	switch s {
	case "", AddressTypeRandom:
		return linklayer.RandomDeviceAddress, nil
	case AddressTypePublic:
		return linklayer.PublicDeviceAddress, nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "invalid address type %q", s)
	}
}

// toStatus maps facade errors onto gRPC status codes
func toStatus(err error) error {
	switch facade.CodeOf(err) {
	case facade.CodeNotRegistered:
		return status.Error(codes.FailedPrecondition, "Psm not registered")
	case facade.CodeNotOpen:
		return status.Error(codes.FailedPrecondition, "Channel not open")
	case facade.CodeTimeout:
		return status.Error(codes.DeadlineExceeded, err.Error())
	case facade.CodeAlreadyRegistered:
		return status.Error(codes.AlreadyExists, err.Error())
	case facade.CodeBusy:
		return status.Error(codes.ResourceExhausted, err.Error())
	case facade.CodeTooLarge, facade.CodeInvalidArgument:
		return status.Error(codes.InvalidArgument, err.Error())
	case facade.CodeConnectFailed, facade.CodeRegistrationFailed:
		return status.Error(codes.Aborted, err.Error())
	case facade.CodeUnavailable:
		if errors.Is(err, context.Canceled) {
			return status.Error(codes.Canceled, err.Error())
		}
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
