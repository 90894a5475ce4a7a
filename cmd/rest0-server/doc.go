// rest0-server hosts the rest0 configuration handler.
//
// It binds the configured URL prefixes, loads the configuration document
// from config.Url (falling back to config.Path), and answers every request
// except "/" with the document and its content hash. The document is
// refreshed every ten seconds on the wall clock, on SIGHUP, and, with
// config.Watch, whenever the local file changes.
//
// Usage:
//
//	rest0-server --prefix http://+:8080/ --set config.Path=/etc/rest0/app.json
//	rest0-server --config /etc/rest0/rest0.yaml check
//	rest0-server --config /etc/rest0/rest0.yaml resolve -o yaml
//	rest0-server token
//
// Settings may also come from REST0_* environment variables, using "__" as
// the nesting separator (REST0_LOG__LEVEL=debug).
package main
