package channel

import (
	"errors"
	"time"
)

const (
	// DefaultConnectTimeout bounds the wait for an outbound connection
	DefaultConnectTimeout = 2 * time.Second
	// DefaultOpenWaitTimeout bounds how long Send waits for a channel to open
	DefaultOpenWaitTimeout = 2 * time.Second
	// DefaultSendTimeout bounds the wait for the link layer to take a packet
	DefaultSendTimeout = 500 * time.Millisecond
	// DefaultRegistrationTimeout bounds service registration and unregistration
	DefaultRegistrationTimeout = 2 * time.Second
)

// Config holds the bounded waits used by helpers
type Config struct {
	ConnectTimeout      time.Duration
	OpenWaitTimeout     time.Duration
	SendTimeout         time.Duration
	RegistrationTimeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ConnectTimeout < 0 {
		return errors.New("connect timeout cannot be negative")
	}
	if c.OpenWaitTimeout < 0 {
		return errors.New("open wait timeout cannot be negative")
	}
	if c.SendTimeout < 0 {
		return errors.New("send timeout cannot be negative")
	}
	if c.RegistrationTimeout < 0 {
		return errors.New("registration timeout cannot be negative")
	}
	return nil
}

// SetDefaults sets sensible default values for unset configuration fields
func (c *Config) SetDefaults() {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.OpenWaitTimeout == 0 {
		c.OpenWaitTimeout = DefaultOpenWaitTimeout
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.RegistrationTimeout == 0 {
		c.RegistrationTimeout = DefaultRegistrationTimeout
	}
}
