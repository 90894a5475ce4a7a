package config

import (
	"strings"

	"github.com/yndnr/rest0-go/internal/telemetry/logger"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Server.Prefixes = append([]string(nil), cfg.Server.Prefixes...)
	sanitized.Handler = sanitizeTree(cfg.Handler)
	return &sanitized
}

// sanitizeTree copies m, masking values under sensitive keys and any
// credentials embedded in URL strings.
func sanitizeTree(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if logger.IsSensitiveKey(k) {
			out[k] = maskSecret(v)
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			out[k] = sanitizeTree(val)
		case string:
			out[k] = logger.RedactURL(val)
		default:
			out[k] = v
		}
	}
	return out
}

// maskSecret masks a secret value for safe logging.
func maskSecret(v any) string {
	s, _ := v.(string)
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
