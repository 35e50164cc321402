package linklayer

import (
	"errors"
	"time"
)

const (
	// DefaultQueueDepth is the number of packets a receiving queue end buffers
	DefaultQueueDepth = 16
	// DefaultMTU is the payload limit of simulated channels
	DefaultMTU = 1024
)

// Config holds configuration for the in-process link layer
type Config struct {
	// QueueDepth bounds each channel's inbound buffer. A full buffer stalls
	// the sender's enqueue callback until the receiver dequeues.
	QueueDepth int

	// MTU is the largest payload a channel accepts
	MTU int

	// ConnectLatency delays outbound connection setup
	ConnectLatency time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.QueueDepth < 0 {
		return errors.New("queue depth cannot be negative")
	}
	if c.MTU < 0 {
		return errors.New("MTU cannot be negative")
	}
	if c.ConnectLatency < 0 {
		return errors.New("connect latency cannot be negative")
	}
	return nil
}

// SetDefaults sets sensible default values for unset configuration fields
func (c *Config) SetDefaults() {
	if c.QueueDepth <= 0 {
		c.QueueDepth = DefaultQueueDepth
	}
	if c.MTU <= 0 {
		c.MTU = DefaultMTU
	}
}
