package config

import "time"

// Default configuration values.
const (
	DefaultPrefix          = "http://+:8080/"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultMetricsAddr = "127.0.0.1:9108"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Prefixes:        []string{DefaultPrefix},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
