// Package config loads blockwatch settings from defaults, an optional YAML
// file and BLOCKWATCH_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level configuration.
type Config struct {
	Listen  ListenConfig  `koanf:"listen"`
	Geo     GeoConfig     `koanf:"geo"`
	Notify  NotifyConfig  `koanf:"notify"`
	Output  OutputConfig  `koanf:"output"`
	NATS    NATSConfig    `koanf:"nats"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
}

// ListenConfig controls the UDP socket.
type ListenConfig struct {
	Address    string `koanf:"address" validate:"omitempty,ip"`
	Port       int    `koanf:"port" validate:"min=1,max=65535"`
	ReadBuffer int    `koanf:"read_buffer" validate:"min=512,max=65535"`
}

// Addr returns the host:port to bind.
func (l ListenConfig) Addr() string {
	return net.JoinHostPort(l.Address, strconv.Itoa(l.Port))
}

// GeoConfig controls the geolocation lookup.
type GeoConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Endpoint        string        `koanf:"endpoint" validate:"required_if=Enabled true,omitempty,url"`
	Timeout         time.Duration `koanf:"timeout" validate:"min=100ms,max=1m"`
	RatePerMinute   int           `koanf:"rate_per_minute" validate:"min=0"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"min=1s"`
}

// NotifyConfig controls the audible notification.
type NotifyConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Bell           bool          `koanf:"bell"`
	Command        string        `koanf:"command"`
	CommandTimeout time.Duration `koanf:"command_timeout" validate:"min=100ms"`
}

// OutputConfig controls console rendering.
type OutputConfig struct {
	Color bool `koanf:"color"`
}

// NATSConfig controls the optional NATS alert sink.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url" validate:"required_if=Enabled true"`
	Subject string `koanf:"subject" validate:"required_if=Enabled true"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Address string `koanf:"address" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			Address:    "0.0.0.0",
			Port:       514,
			ReadBuffer: 65535,
		},
		Geo: GeoConfig{
			Enabled:         true,
			Endpoint:        "http://ip-api.com/json",
			Timeout:         3 * time.Second,
			RatePerMinute:   45, // ip-api.com free tier
			BreakerFailures: 5,
			BreakerTimeout:  time.Minute,
		},
		Notify: NotifyConfig{
			Enabled:        true,
			Bell:           true,
			CommandTimeout: 5 * time.Second,
		},
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "blockwatch.alerts",
		},
		Metrics: MetricsConfig{
			Address: "127.0.0.1:9514",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
