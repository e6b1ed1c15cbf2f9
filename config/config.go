package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Server is the remote console endpoint. Immutable per connection
// attempt.
type Server struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
}

// Addr returns the endpoint in host:port form.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate checks that the endpoint is usable for a connection attempt.
func (s Server) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", s.Port)
	}
	if s.Password == "" {
		return fmt.Errorf("server password cannot be empty")
	}
	return nil
}

// Timeouts bound every network operation. No unbounded blocking is
// permitted anywhere in the client.
type Timeouts struct {
	Connect time.Duration `yaml:"connect"` // Connect timeout, default 5s
	Read    time.Duration `yaml:"read"`    // Per-frame read timeout, default 5s
}

// Location is a named coordinate an operator can teleport players to.
type Location struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type Config struct {
	Server       Server              `yaml:"server"`
	Timeouts     Timeouts            `yaml:"timeouts"`
	PollInterval time.Duration       `yaml:"poll_interval"` // Player list refresh, default 5s
	DataDir      string              `yaml:"data_dir"`      // Catalog JSON directory
	Locations    map[string]Location `yaml:"locations"`
}

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeouts.Connect == 0 {
		c.Timeouts.Connect = DefaultConnectTimeout
	}
	if c.Timeouts.Read == 0 {
		c.Timeouts.Read = DefaultReadTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
}

// Validate checks the full configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("poll_interval must be at least 1s, got %s", c.PollInterval)
	}
	return nil
}
