package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/rest0-go/internal/host"
	"github.com/yndnr/rest0-go/internal/telemetry/logger"
	"github.com/yndnr/rest0-go/pkg/token"
)

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyMetrics(&cfg.Metrics),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	if len(cfg.Prefixes) == 0 {
		return errors.New("server.prefixes must list at least one prefix")
	}

	var errs []error
	needTLS := false
	for _, raw := range cfg.Prefixes {
		p, err := host.ParsePrefix(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("server.prefixes: %w", err))
			continue
		}
		if p.Scheme == "https" {
			needTLS = true
		}
	}

	if needTLS {
		if cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
			errs = append(errs, errors.New("server.tls_cert_file and server.tls_key_file are required for https prefixes"))
		} else {
			for _, f := range []string{cfg.TLSCertFile, cfg.TLSKeyFile} {
				if _, err := os.Stat(f); err != nil {
					errs = append(errs, fmt.Errorf("tls file: %w", err))
				}
			}
		}
	}

	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		errs = append(errs, fmt.Errorf("metrics.addr %q: %w", cfg.Addr, err))
	}
	if cfg.AuthTokenHash != "" && !token.ValidHash(cfg.AuthTokenHash) {
		errs = append(errs, errors.New("metrics.auth_token_hash must be 64 hex characters"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
		return nil
	}
	return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
}
