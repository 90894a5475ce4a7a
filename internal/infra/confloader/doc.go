// Package confloader loads the rest0 server configuration.
//
// Sources, later ones overriding earlier ones:
//
//  1. Struct defaults supplied by the caller
//  2. YAML configuration file
//  3. Environment variables (REST0_ prefix)
//  4. Command-line overrides, passed as a flat map
//
// Environment variables separate nesting levels with a double underscore so
// that keys may keep single underscores:
//
//	REST0_SERVER__TLS_CERT_FILE=/etc/rest0/tls.crt   -> server.tls_cert_file
//	REST0_HANDLER__CONFIG__URL=https://cfg/app.json  -> handler.config.url
//
// The Watcher reports writes to individual files and is used to refresh the
// handler configuration as soon as its local file changes.
package confloader
