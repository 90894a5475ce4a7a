// Package command defines the rest0-server command line using urfave/cli/v2:
//
//   - root.go: App, global flags and configuration loading
//   - serve.go: runs the host (the default action)
//   - check.go: validates configuration and prints the effective settings
//   - resolve.go: resolves the configuration source once and prints it
//   - token.go: generates a bearer token for the metrics listener
//
// Every command except token loads configuration the same way: the YAML file named by
// --config, then REST0_* environment variables, then flags.
package command
