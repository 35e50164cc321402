// Package config loads daemon configuration from YAML and DYNCHAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	ichannel "github.com/rmacdonaldsmith/dynchan-go/internal/channel"
	"github.com/rmacdonaldsmith/dynchan-go/internal/httpapi"
	iinbound "github.com/rmacdonaldsmith/dynchan-go/internal/inbound"
	sim "github.com/rmacdonaldsmith/dynchan-go/internal/linklayer"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// EnvPrefix prefixes every environment override, e.g. DYNCHAN_LOG_LEVEL=debug
const EnvPrefix = "DYNCHAN"

// Config is the root daemon configuration.
type Config struct {
	// NodeID names this daemon in health output
	NodeID string `mapstructure:"node_id"`

	// Address is the local device address, "AA:BB:CC:DD:EE:FF"
	Address string `mapstructure:"address"`

	// Services are enabled at startup
	Services []string `mapstructure:"services"`

	Log     LogConfig     `mapstructure:"log"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Channel ChannelConfig `mapstructure:"channel"`
	Inbound InboundConfig `mapstructure:"inbound"`
	Link    LinkConfig    `mapstructure:"link"`

	// Peers are simulated remote devices attached to the link
	Peers []PeerConfig `mapstructure:"peers"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`
	// Rotation applies to file outputs
	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool `mapstructure:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// GRPCConfig configures the gRPC control surface
type GRPCConfig struct {
	Listen string `mapstructure:"listen"`
}

// HTTPConfig configures the HTTP control surface
type HTTPConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Listen       string        `mapstructure:"listen"`
	SecretKey    string        `mapstructure:"secret_key"`
	NoAuth       bool          `mapstructure:"no_auth"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	AdminClients []string      `mapstructure:"admin_clients"`
	KeepAlive    time.Duration `mapstructure:"keepalive"`
}

// ChannelConfig holds the helpers' bounded waits
type ChannelConfig struct {
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout"`
	OpenWaitTimeout     time.Duration `mapstructure:"open_wait_timeout"`
	SendTimeout         time.Duration `mapstructure:"send_timeout"`
	RegistrationTimeout time.Duration `mapstructure:"registration_timeout"`
}

// InboundConfig sizes the inbound packet queue
type InboundConfig struct {
	Capacity int    `mapstructure:"capacity"`
	Overflow string `mapstructure:"overflow"`
}

// LinkConfig tunes the in-process link layer
type LinkConfig struct {
	QueueDepth     int           `mapstructure:"queue_depth"`
	MTU            int           `mapstructure:"mtu"`
	ConnectLatency time.Duration `mapstructure:"connect_latency"`
}

// PeerConfig describes one simulated remote device
type PeerConfig struct {
	Address  string   `mapstructure:"address"`
	Services []string `mapstructure:"services"`
	// Echo sends every received packet back on the same channel
	Echo bool `mapstructure:"echo"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		NodeID:  defaultNodeID(),
		Address: "C0:00:00:00:00:01",
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		GRPC: GRPCConfig{Listen: ":7999"},
		HTTP: HTTPConfig{
			Listen:       ":8081",
			TokenTTL:     httpapi.DefaultTokenTTL,
			AdminClients: []string{"admin"},
			KeepAlive:    httpapi.DefaultKeepAlive,
		},
		Channel: ChannelConfig{
			ConnectTimeout:      ichannel.DefaultConnectTimeout,
			OpenWaitTimeout:     ichannel.DefaultOpenWaitTimeout,
			SendTimeout:         ichannel.DefaultSendTimeout,
			RegistrationTimeout: ichannel.DefaultRegistrationTimeout,
		},
		Inbound: InboundConfig{
			Capacity: iinbound.DefaultCapacity,
			Overflow: string(iinbound.DropOldest),
		},
		Link: LinkConfig{
			QueueDepth: sim.DefaultQueueDepth,
			MTU:        sim.DefaultMTU,
		},
	}
}

// Load reads configuration from path, or when empty from $DYNCHAN_CONFIG or
// dynchan.yaml in ., ./configs or ~/.dynchan. A missing file is not an error.
// Environment variables override file values; "." and "-" in keys become "_".
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	seedDefaults(v, cfg)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dynchan")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".dynchan"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// seedDefaults registers every key so env-only configs work
func seedDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("node_id", cfg.NodeID)
	v.SetDefault("address", cfg.Address)
	v.SetDefault("services", []string{})

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)

	v.SetDefault("grpc.listen", cfg.GRPC.Listen)

	v.SetDefault("http.enabled", cfg.HTTP.Enabled)
	v.SetDefault("http.listen", cfg.HTTP.Listen)
	v.SetDefault("http.secret_key", cfg.HTTP.SecretKey)
	v.SetDefault("http.no_auth", cfg.HTTP.NoAuth)
	v.SetDefault("http.token_ttl", cfg.HTTP.TokenTTL)
	v.SetDefault("http.admin_clients", cfg.HTTP.AdminClients)
	v.SetDefault("http.keepalive", cfg.HTTP.KeepAlive)

	v.SetDefault("channel.connect_timeout", cfg.Channel.ConnectTimeout)
	v.SetDefault("channel.open_wait_timeout", cfg.Channel.OpenWaitTimeout)
	v.SetDefault("channel.send_timeout", cfg.Channel.SendTimeout)
	v.SetDefault("channel.registration_timeout", cfg.Channel.RegistrationTimeout)

	v.SetDefault("inbound.capacity", cfg.Inbound.Capacity)
	v.SetDefault("inbound.overflow", cfg.Inbound.Overflow)

	v.SetDefault("link.queue_depth", cfg.Link.QueueDepth)
	v.SetDefault("link.mtu", cfg.Link.MTU)
	v.SetDefault("link.connect_latency", cfg.Link.ConnectLatency)
}

// Validate checks the configuration and normalises a few fields
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	if strings.TrimSpace(c.NodeID) == "" {
		c.NodeID = defaultNodeID()
	}

	if _, err := c.LocalAddress(); err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	if _, err := c.ServiceKeys(); err != nil {
		return fmt.Errorf("invalid services: %w", err)
	}
	for i, p := range c.Peers {
		if _, err := linklayer.ParseAddress(p.Address, linklayer.RandomDeviceAddress); err != nil {
			return fmt.Errorf("invalid peers[%d].address: %w", i, err)
		}
		if _, err := parseKeys(p.Services); err != nil {
			return fmt.Errorf("invalid peers[%d].services: %w", i, err)
		}
	}

	if c.GRPC.Listen == "" {
		return errors.New("grpc.listen is required")
	}
	if c.HTTP.Enabled {
		httpCfg := c.HTTPServerConfig()
		if err := httpCfg.Validate(); err != nil {
			return fmt.Errorf("invalid http: %w", err)
		}
	}
	if err := c.ChannelConfig().Validate(); err != nil {
		return fmt.Errorf("invalid channel: %w", err)
	}
	if err := c.InboundConfig().Validate(); err != nil {
		return fmt.Errorf("invalid inbound: %w", err)
	}
	if err := c.LinkConfig().Validate(); err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	return nil
}

// LocalAddress parses Address
func (c *Config) LocalAddress() (linklayer.Address, error) {
	return linklayer.ParseAddress(c.Address, linklayer.RandomDeviceAddress)
}

// ServiceKeys parses Services
func (c *Config) ServiceKeys() ([]linklayer.ServiceKey, error) {
	return parseKeys(c.Services)
}

// PeerKeys parses a peer's Services
func (p PeerConfig) PeerKeys() ([]linklayer.ServiceKey, error) {
	return parseKeys(p.Services)
}

// ChannelConfig converts to the helper configuration
func (c *Config) ChannelConfig() *ichannel.Config {
	return &ichannel.Config{
		ConnectTimeout:      c.Channel.ConnectTimeout,
		OpenWaitTimeout:     c.Channel.OpenWaitTimeout,
		SendTimeout:         c.Channel.SendTimeout,
		RegistrationTimeout: c.Channel.RegistrationTimeout,
	}
}

// InboundConfig converts to the queue configuration
func (c *Config) InboundConfig() *iinbound.Config {
	return &iinbound.Config{
		Capacity: c.Inbound.Capacity,
		Overflow: iinbound.OverflowPolicy(strings.ToLower(c.Inbound.Overflow)),
	}
}

// LinkConfig converts to the link layer configuration
func (c *Config) LinkConfig() *sim.Config {
	return &sim.Config{
		QueueDepth:     c.Link.QueueDepth,
		MTU:            c.Link.MTU,
		ConnectLatency: c.Link.ConnectLatency,
	}
}

// HTTPServerConfig converts to the HTTP server configuration
func (c *Config) HTTPServerConfig() httpapi.Config {
	return httpapi.Config{
		Listen:       c.HTTP.Listen,
		SecretKey:    c.HTTP.SecretKey,
		NoAuth:       c.HTTP.NoAuth,
		TokenTTL:     c.HTTP.TokenTTL,
		AdminClients: c.HTTP.AdminClients,
		KeepAlive:    c.HTTP.KeepAlive,
	}
}

func parseKeys(values []string) ([]linklayer.ServiceKey, error) {
	keys := make([]linklayer.ServiceKey, 0, len(values))
	seen := make(map[linklayer.ServiceKey]bool, len(values))
	for _, s := range values {
		key, err := linklayer.ParseServiceKey(s)
		if err != nil {
			return nil, err
		}
		if key == 0 {
			return nil, errors.New("service key cannot be zero")
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate service key %s", key)
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}

func defaultNodeID() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "dynchan-1"
	}
	return "dynchan-" + hostname
}
