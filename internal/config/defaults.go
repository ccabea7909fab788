package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPITimeout         = 30 * time.Second
	DefaultAPIMaxRetries      = 3
	DefaultHistoryLines       = 100
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultStreamMaxRetries   = 10
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultLogLevel           = "info"
)

// applyDefaults fills zero-valued fields. The -1 sentinels pass
// through untouched; the stream layer reads them as explicit zeros.
func (c *Config) applyDefaults() {
	if c.Server.Timeout == 0 {
		c.Server.Timeout = DefaultAPITimeout
	}
	if c.Server.MaxRetries == 0 {
		c.Server.MaxRetries = DefaultAPIMaxRetries
	}

	if c.Stream.HistoryLines == 0 {
		c.Stream.HistoryLines = DefaultHistoryLines
	}
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Stream.MaxRetries == 0 {
		c.Stream.MaxRetries = DefaultStreamMaxRetries
	}
	if c.Stream.HandshakeTimeout == 0 {
		c.Stream.HandshakeTimeout = DefaultHandshakeTimeout
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
