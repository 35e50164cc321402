// Package inbound provides interfaces for delivering received channel data to
// pull-based consumers.
//
// This package defines the core abstractions for the inbound event bridge:
//   - Event: one received packet tagged with its service key and a per-key sequence
//   - Sink: the producer side, called from the link layer's handler
//   - Bridge: a bounded ordered queue that consumers drain with Next or RunLoop
//
// The producer never blocks. When the queue is full the configured overflow
// policy drops either the oldest queued event or the new one, and the drop is
// counted in the statistics.
//
// Example usage:
//
//	err := bridge.RunLoop(ctx, func(ev *inbound.Event) error {
//		return stream.Send(ev)
//	})
//	if errors.Is(err, context.Canceled) {
//		return nil // consumer detached
//	}
package inbound
