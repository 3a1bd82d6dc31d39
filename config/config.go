package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds everything mcproxy needs to bind, dial upstream, and
// negotiate the protocol options a proxied session may trigger.
type Config struct {
	// Listen/dial endpoints.
	ListenAddress string        `json:"listen_address" yaml:"listen_address"`
	UpstreamHost  string        `json:"upstream_host" yaml:"upstream_host"`
	UpstreamPort  uint16        `json:"upstream_port" yaml:"upstream_port"`
	DialTimeout   time.Duration `json:"dial_timeout" yaml:"dial_timeout"`

	// Protocol negotiation, mirrored by the endpoint once the
	// corresponding login-phase packet is observed.
	CompressionThreshold int  `json:"compression_threshold" yaml:"compression_threshold"`
	AllowEncryption      bool `json:"allow_encryption" yaml:"allow_encryption"`

	// Plugins activated for every proxied session, by registered name.
	Plugins []string `json:"plugins" yaml:"plugins"`

	// Inbound backpressure applied to each leg independently, 0 to
	// disable. Burst is in bytes, like RateLimitBytesPerSecond.
	RateLimitBytesPerSecond int `json:"rate_limit_bytes_per_second" yaml:"rate_limit_bytes_per_second"`
	RateLimitBurst          int `json:"rate_limit_burst" yaml:"rate_limit_burst"`

	// Logging.
	LogLevel string `json:"log_level" yaml:"log_level"`
	Verbose  bool   `json:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the configuration mcproxy starts from before
// flags or a config file are applied.
func DefaultConfig() *Config {
	return &Config{
		ListenAddress:        "0.0.0.0:25565",
		UpstreamHost:         "127.0.0.1",
		UpstreamPort:         25566,
		DialTimeout:          10 * time.Second,
		CompressionThreshold: -1,
		AllowEncryption:      true,
		LogLevel:             "info",
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a JSON file.
func SaveConfig(config *Config, filename string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}
	if c.UpstreamHost == "" {
		return fmt.Errorf("upstream_host is required")
	}
	if c.UpstreamPort == 0 {
		return fmt.Errorf("upstream_port is required")
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial_timeout must be positive")
	}
	return nil
}

// UnmarshalJSON implements custom JSON unmarshaling so DialTimeout can
// be written as a duration string ("10s") rather than a raw int64.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		DialTimeout string `json:"dial_timeout"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.DialTimeout != "" {
		duration, err := time.ParseDuration(aux.DialTimeout)
		if err != nil {
			return fmt.Errorf("invalid dial_timeout format: %w", err)
		}
		c.DialTimeout = duration
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for DialTimeout.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		DialTimeout string `json:"dial_timeout"`
		*Alias
	}{
		DialTimeout: c.DialTimeout.String(),
		Alias:       (*Alias)(c),
	})
}
