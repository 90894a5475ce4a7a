// Package config provides the rest0-server configuration.
//
//   - types.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (prefix syntax, TLS material, log settings)
//   - sanitize.go: Log sanitization (hide credentials in handler settings)
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// REST0_* environment variables and command-line overrides. The handler
// section is passed to the handler as host.Values without interpretation.
package config
