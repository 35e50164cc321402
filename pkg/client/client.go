// Package client is a Go client for the dynchan.v1 control service.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	dynchanv1 "github.com/rmacdonaldsmith/dynchan-go/proto/dynchan/v1"
)

// Client talks to a dynchan daemon over gRPC
type Client struct {
	conn *grpc.ClientConn
	rpc  dynchanv1.DynamicChannelFacadeClient
}

// Dial connects to target. Without options the connection is insecure.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if target == "" {
		return nil, errors.New("target cannot be empty")
	}
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn, rpc: dynchanv1.NewDynamicChannelFacadeClient(conn)}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// SetDynamicChannel enables or disables psm
func (c *Client) SetDynamicChannel(ctx context.Context, psm uint16, enabled bool) error {
	_, err := c.rpc.SetDynamicChannel(ctx, &dynchanv1.SetDynamicChannelRequest{Psm: uint32(psm), Enabled: enabled})
	return err
}

// OpenDynamicChannel connects psm to the peer and returns the connection result
func (c *Client) OpenDynamicChannel(ctx context.Context, psm uint16, peer, addressType string) (uint32, error) {
	resp, err := c.rpc.OpenDynamicChannel(ctx, &dynchanv1.OpenDynamicChannelRequest{
		Psm:         uint32(psm),
		PeerAddress: peer,
		AddressType: addressType,
	})
	if err != nil {
		return 0, err
	}
	return resp.GetStatus(), nil
}

// CloseDynamicChannel closes the channel open for psm
func (c *Client) CloseDynamicChannel(ctx context.Context, psm uint16) error {
	_, err := c.rpc.CloseDynamicChannel(ctx, &dynchanv1.CloseDynamicChannelRequest{Psm: uint32(psm)})
	return err
}

// SendDynamicChannelPacket sends one packet on psm
func (c *Client) SendDynamicChannelPacket(ctx context.Context, psm uint16, payload []byte) error {
	_, err := c.rpc.SendDynamicChannelPacket(ctx, &dynchanv1.SendDynamicChannelPacketRequest{Psm: uint32(psm), Payload: payload})
	return err
}

// ListServices lists the enabled service keys
func (c *Client) ListServices(ctx context.Context) ([]*dynchanv1.ServiceInfo, error) {
	resp, err := c.rpc.ListServices(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.GetServices(), nil
}

// FetchL2capData streams received packets until ctx is done.
// Packets are returned through a channel, errors through a separate channel.
func (c *Client) FetchL2capData(ctx context.Context) (<-chan *dynchanv1.DataPacket, <-chan error) {
	packets := make(chan *dynchanv1.DataPacket)
	errCh := make(chan error, 1)

	go func() {
		defer close(packets)
		defer close(errCh)

		stream, err := c.rpc.FetchL2capData(ctx, &emptypb.Empty{})
		if err != nil {
			errCh <- err
			return
		}

		for {
			pkt, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					errCh <- err
				}
				return
			}
			select {
			case packets <- pkt:
			case <-ctx.Done():
				return
			}
		}
	}()

	return packets, errCh
}
