// Package httpserver runs the operational side listener of rest0-server.
//
// The host's prefixes answer application traffic through the handler
// lifecycle; this package serves /health, /ready, /status/config and
// /metrics on a separate address using net/http, wrapped in the request-ID,
// recovery, rate-limit and access-log middlewares.
package httpserver
