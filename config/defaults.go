package config

import "time"

const (
	EnvPrefix = "RCONSOLE_"

	// DefaultConnectTimeout bounds the TCP connect (and reachability probe).
	DefaultConnectTimeout = 5 * time.Second

	// DefaultReadTimeout bounds each frame read during a command exchange.
	DefaultReadTimeout = 5 * time.Second

	// DefaultPollInterval is how often the player list is refreshed.
	DefaultPollInterval = 5 * time.Second

	// DefaultDataDir holds the catalog JSON files.
	DefaultDataDir = "data"
)
