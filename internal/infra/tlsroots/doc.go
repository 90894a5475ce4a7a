// Package tlsroots provides the TLS material used by rest0.
//
//   - roots.go: trust pool for outbound HTTPS (the remote config source)
//   - reloader.go: serving certificate for https:// listener prefixes,
//     reloaded from disk when the files change
package tlsroots
