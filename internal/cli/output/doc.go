// Package output formats rest0-server command output.
//
//   - formatter.go: Formatter interface and factory
//   - text.go: flattened key/value listing
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
package output
