package httpclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StreamClient receives inbound packets over Server-Sent Events
type StreamClient struct {
	client  *Client
	packets chan PacketMessage
	errors  chan error
	done    chan struct{}
	cancel  context.CancelFunc
}

// StreamConfig configures the streaming client
type StreamConfig struct {
	// BufferSize for the packet channel
	BufferSize int

	// ReconnectDelay between connection attempts
	ReconnectDelay time.Duration

	// MaxReconnectAttempts (0 = infinite)
	MaxReconnectAttempts int
}

// SetDefaults sets reasonable default values for StreamConfig
func (sc *StreamConfig) SetDefaults() {
	if sc.BufferSize == 0 {
		sc.BufferSize = 100
	}
	if sc.ReconnectDelay == 0 {
		sc.ReconnectDelay = 2 * time.Second
	}
}

// Stream opens the packet stream and reconnects when it drops. Packets are
// never dropped client side; a slow reader applies backpressure to the
// connection.
func (c *Client) Stream(ctx context.Context, config StreamConfig) (*StreamClient, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}
	config.SetDefaults()

	streamCtx, cancel := context.WithCancel(ctx)
	sc := &StreamClient{
		client:  c,
		packets: make(chan PacketMessage, config.BufferSize),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	go sc.run(streamCtx, config)
	return sc, nil
}

// Packets returns the channel for receiving packets
func (sc *StreamClient) Packets() <-chan PacketMessage {
	return sc.packets
}

// Errors returns the channel for receiving non-fatal stream errors
func (sc *StreamClient) Errors() <-chan error {
	return sc.errors
}

// Done returns a channel that's closed when streaming ends
func (sc *StreamClient) Done() <-chan struct{} {
	return sc.done
}

// Close stops the stream and waits for it to wind down
func (sc *StreamClient) Close() error {
	sc.cancel()
	<-sc.done
	return nil
}

// run handles the SSE loop with reconnection
func (sc *StreamClient) run(ctx context.Context, config StreamConfig) {
	defer close(sc.done)
	defer close(sc.packets)
	defer close(sc.errors)

	attempts := 0
	for ctx.Err() == nil {
		if err := sc.connectAndStream(ctx); err != nil && ctx.Err() == nil {
			sc.report(fmt.Errorf("streaming error: %w", err))
		}

		attempts++
		if config.MaxReconnectAttempts > 0 && attempts > config.MaxReconnectAttempts {
			sc.report(fmt.Errorf("max reconnect attempts (%d) exceeded", config.MaxReconnectAttempts))
			return
		}

		select {
		case <-time.After(config.ReconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

func (sc *StreamClient) report(err error) {
	select {
	case sc.errors <- err:
	default:
	}
}

// connectAndStream establishes the SSE connection and processes packets
func (sc *StreamClient) connectAndStream(ctx context.Context) error {
	streamURL := sc.client.baseURL.ResolveReference(&url.URL{Path: "/api/v1/packets/stream"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create streaming request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Authorization", "Bearer "+sc.client.token)

	// The shared client's timeout would cut long-lived streams
	httpClient := *sc.client.httpClient
	httpClient.Timeout = 0
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("streaming failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return sc.processSSEStream(ctx, resp.Body)
}

// processSSEStream reads and parses Server-Sent Events
func (sc *StreamClient) processSSEStream(ctx context.Context, reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, ":"):
			// comment or keepalive
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			if event == "error" {
				return fmt.Errorf("server closed stream: %s", data)
			}
			var pkt PacketMessage
			if err := json.Unmarshal([]byte(data), &pkt); err != nil {
				sc.report(fmt.Errorf("failed to parse packet: %w", err))
				continue
			}
			select {
			case sc.packets <- pkt:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading SSE stream: %w", err)
	}
	return nil
}
