package inbound

import (
	"fmt"
)

// OverflowPolicy selects what a full queue discards
type OverflowPolicy string

const (
	// DropOldest discards the oldest queued event to make room
	DropOldest OverflowPolicy = "drop_oldest"
	// DropNewest discards the event being pushed
	DropNewest OverflowPolicy = "drop_newest"

	// DefaultCapacity is the default queue bound
	DefaultCapacity = 1024
)

// Config holds configuration for the inbound queue
type Config struct {
	// Capacity bounds the number of queued events
	Capacity int

	// Overflow is the policy applied when the queue is full
	Overflow OverflowPolicy
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative: %d", c.Capacity)
	}
	switch c.Overflow {
	case "", DropOldest, DropNewest:
	default:
		return fmt.Errorf("unknown overflow policy %q", c.Overflow)
	}
	return nil
}

// SetDefaults sets sensible default values for unset configuration fields
func (c *Config) SetDefaults() {
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Overflow == "" {
		c.Overflow = DropOldest
	}
}
