// Package channel provides interfaces for dynamic channel lifecycle management.
//
// This package defines the core abstractions between the control surface and the
// link layer:
//   - Helper: owns at most one live channel for a service key and turns the
//     link layer's callbacks into blocking operations with bounded waits
//   - Registry: maps service keys to helpers
//   - State: the helper's lifecycle state
//
// Lifecycle of a helper:
//  1. Registering: the service key is being registered with the channel manager
//  2. Idle: registered, no channel open
//  3. Connecting: an outbound connection has been requested
//  4. Open: a channel is open and owned by the helper
//  5. Closed: the helper was destroyed; every operation fails
//
// Waits never hold a lock. A caller blocked in Connect or Send is woken by the
// matching link layer callback, by its own deadline, or by Destroy.
//
// Example usage:
//
//	reg, err := channel.NewRegistry(manager, loop, bridge, config, logger)
//	if err := reg.Enable(ctx, 0x1001); err != nil {
//		return err
//	}
//	h, _ := reg.Lookup(0x1001)
//	if _, err := h.Connect(ctx, peer); err != nil {
//		return err
//	}
//	err = h.Send(ctx, []byte{0xDE, 0xAD})
package channel
