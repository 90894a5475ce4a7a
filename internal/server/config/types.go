package config

import "time"

// ServerConfig is the root configuration for rest0-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server" json:"server" yaml:"server"`
	Metrics MetricsSection `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Log     LogSection     `koanf:"log" json:"log" yaml:"log"`

	// Handler holds the handler's own settings, e.g. config.Url. It is
	// flattened to dotted keys before being handed to the handler.
	Handler map[string]any `koanf:"handler" json:"handler,omitempty" yaml:"handler,omitempty"`
}

// ServerSection configures the host listeners.
type ServerSection struct {
	// Prefixes are URL prefixes such as "http://+:8080/". A comma separated
	// string is accepted from the environment.
	Prefixes []string `koanf:"prefixes" json:"prefixes" yaml:"prefixes"`

	// TLSCertFile and TLSKeyFile are required when any prefix is https.
	TLSCertFile string `koanf:"tls_cert_file" json:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" json:"tls_key_file" yaml:"tls_key_file"`

	// ShutdownTimeout bounds how long in-flight requests may take to finish.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// MetricsSection configures the side listener for /metrics and health probes.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" json:"addr" yaml:"addr"`

	// AuthTokenHash is the hex SHA-256 of the bearer token required on
	// /metrics and /status/config. Empty leaves them open.
	AuthTokenHash string `koanf:"auth_token_hash" json:"auth_token_hash,omitempty" yaml:"auth_token_hash,omitempty"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}
