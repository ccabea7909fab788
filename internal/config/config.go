package config

import "time"

// Config is the root configuration for the streaming tools.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Stream  StreamConfig  `yaml:"stream"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds admin API settings for the game server.
type ServerConfig struct {
	BaseURL    string        `yaml:"base_url"` // e.g. https://panel.example.com:8080
	APIKey     string        `yaml:"api_key"`  // Admin API key (Bearer token)
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StreamConfig holds log stream client settings. Unset fields take
// defaults; history_lines and max_retries accept -1 as an explicit
// zero (no history, no automatic reconnects).
type StreamConfig struct {
	HistoryLines       int           `yaml:"history_lines"` // -1 = no history
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	MaxRetries         int           `yaml:"max_retries"` // -1 = never reconnect automatically
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
