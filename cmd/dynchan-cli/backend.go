package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/client"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/httpclient"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// controlBackend is the set of operations every command needs, implemented
// over both control surfaces
type controlBackend interface {
	Enable(ctx context.Context, key linklayer.ServiceKey) error
	Disable(ctx context.Context, key linklayer.ServiceKey) error
	Connect(ctx context.Context, key linklayer.ServiceKey, peer, addressType string) (linklayer.ConnectionResult, error)
	CloseChannel(ctx context.Context, key linklayer.ServiceKey) error
	Send(ctx context.Context, key linklayer.ServiceKey, payload []byte) error
	List(ctx context.Context) ([]serviceRow, error)
	Stream(ctx context.Context, fn func(packetRow) bool) error
	Close() error
}

type serviceRow struct {
	Key          linklayer.ServiceKey
	State        string
	Peer         string
	MTU          int
	SendInFlight bool
	Sent         uint64
	Received     uint64
}

type packetRow struct {
	Key       linklayer.ServiceKey
	Sequence  uint64
	Payload   []byte
	Timestamp time.Time
}

var (
	_ controlBackend = (*httpBackend)(nil)
	_ controlBackend = (*grpcBackend)(nil)
)

type httpBackend struct {
	client *httpclient.Client
}

func (b *httpBackend) Enable(ctx context.Context, key linklayer.ServiceKey) error {
	_, err := b.client.EnableService(ctx, key.String())
	return err
}

func (b *httpBackend) Disable(ctx context.Context, key linklayer.ServiceKey) error {
	return b.client.DisableService(ctx, key.String())
}

func (b *httpBackend) Connect(ctx context.Context, key linklayer.ServiceKey, peer, addressType string) (linklayer.ConnectionResult, error) {
	resp, err := b.client.Connect(ctx, key.String(), peer, addressType)
	if err != nil {
		return 0, err
	}
	return linklayer.ConnectionResult(resp.Result), nil
}

func (b *httpBackend) CloseChannel(ctx context.Context, key linklayer.ServiceKey) error {
	return b.client.CloseChannel(ctx, key.String())
}

func (b *httpBackend) Send(ctx context.Context, key linklayer.ServiceKey, payload []byte) error {
	return b.client.SendPacket(ctx, key.String(), payload)
}

func (b *httpBackend) List(ctx context.Context) ([]serviceRow, error) {
	services, err := b.client.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]serviceRow, 0, len(services))
	for _, s := range services {
		key, err := linklayer.ParseServiceKey(s.Key)
		if err != nil {
			return nil, fmt.Errorf("server returned bad key %q: %w", s.Key, err)
		}
		rows = append(rows, serviceRow{
			Key:          key,
			State:        s.State,
			Peer:         s.PeerAddress,
			MTU:          s.MTU,
			SendInFlight: s.SendInFlight,
			Sent:         s.PacketsSent,
			Received:     s.PacketsReceived,
		})
	}
	return rows, nil
}

func (b *httpBackend) Stream(ctx context.Context, fn func(packetRow) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := b.client.Stream(ctx, httpclient.StreamConfig{})
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt, ok := <-stream.Packets():
			if !ok {
				return nil
			}
			key, err := linklayer.ParseServiceKey(pkt.Key)
			if err != nil {
				return fmt.Errorf("server returned bad key %q: %w", pkt.Key, err)
			}
			if !fn(packetRow{Key: key, Sequence: pkt.Sequence, Payload: pkt.Payload, Timestamp: pkt.Timestamp}) {
				return nil
			}
		case err, ok := <-stream.Errors():
			// Errors are non-fatal; the stream reconnects
			if ok {
				fmt.Printf("Stream error: %v\n", err)
			}
		}
	}
}

func (b *httpBackend) Close() error { return nil }

type grpcBackend struct {
	client *client.Client
}

func (b *grpcBackend) Enable(ctx context.Context, key linklayer.ServiceKey) error {
	return b.client.SetDynamicChannel(ctx, uint16(key), true)
}

func (b *grpcBackend) Disable(ctx context.Context, key linklayer.ServiceKey) error {
	return b.client.SetDynamicChannel(ctx, uint16(key), false)
}

func (b *grpcBackend) Connect(ctx context.Context, key linklayer.ServiceKey, peer, addressType string) (linklayer.ConnectionResult, error) {
	status, err := b.client.OpenDynamicChannel(ctx, uint16(key), peer, addressType)
	if err != nil {
		return 0, err
	}
	return linklayer.ConnectionResult(status), nil
}

func (b *grpcBackend) CloseChannel(ctx context.Context, key linklayer.ServiceKey) error {
	return b.client.CloseDynamicChannel(ctx, uint16(key))
}

func (b *grpcBackend) Send(ctx context.Context, key linklayer.ServiceKey, payload []byte) error {
	return b.client.SendDynamicChannelPacket(ctx, uint16(key), payload)
}

func (b *grpcBackend) List(ctx context.Context) ([]serviceRow, error) {
	services, err := b.client.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]serviceRow, 0, len(services))
	for _, s := range services {
		rows = append(rows, serviceRow{
			Key:          linklayer.ServiceKey(s.Psm),
			State:        s.State,
			Peer:         s.PeerAddress,
			MTU:          int(s.Mtu),
			SendInFlight: s.SendInFlight,
			Sent:         s.PacketsSent,
			Received:     s.PacketsReceived,
		})
	}
	return rows, nil
}

func (b *grpcBackend) Stream(ctx context.Context, fn func(packetRow) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	packets, errs := b.client.FetchL2capData(ctx)
	for {
		select {
		case pkt, ok := <-packets:
			if !ok {
				// The error, if any, is buffered before packets closes
				if err, ok := <-errs; ok && err != nil {
					return err
				}
				return nil
			}
			row := packetRow{
				Key:       linklayer.ServiceKey(pkt.Psm),
				Sequence:  pkt.Sequence,
				Payload:   pkt.Payload,
				Timestamp: pkt.GetTimestamp().AsTime(),
			}
			if !fn(row) {
				return nil
			}
		case err, ok := <-errs:
			if ok && err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
				return err
			}
			if !ok {
				errs = nil
			}
		}
	}
}

func (b *grpcBackend) Close() error {
	return b.client.Close()
}
