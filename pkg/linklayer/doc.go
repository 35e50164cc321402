// Package linklayer defines the contract of the link-layer channel manager that
// the dynchan facade drives.
//
// This package defines the abstractions the facade consumes but does not implement:
//   - ChannelManager: registers services and originates outbound connections
//   - Service: the registration handle returned once a service is registered
//   - Channel: an established dynamic channel owned by whoever received it
//   - QueueEnd: the duplex data port of a channel with single-registration callbacks
//   - Handler: the sequential execution context every callback is delivered on
//
// Callback contract:
//   - All callbacks passed to a ChannelManager, Channel or QueueEnd run on the
//     Handler given at registration time, strictly one at a time.
//   - Register* methods never invoke the callback synchronously; it is always
//     posted to the handler. Callers may therefore register while holding locks.
//   - A QueueEnd accepts at most one enqueue and one dequeue registration at a
//     time. The enqueue callback is invoked whenever the channel has room and
//     must return the packet to send; callbacks that send a single packet
//     unregister themselves from inside the callback.
//
// Example usage:
//
//	manager.RegisterService(key, handler,
//		func(result linklayer.RegistrationResult, svc linklayer.Service) { ... },
//		func(ch linklayer.Channel) { ... })
//
//	manager.ConnectChannel(peer, key, handler,
//		func(ch linklayer.Channel) { ... },
//		func(result linklayer.ConnectionResult) { ... })
package linklayer
