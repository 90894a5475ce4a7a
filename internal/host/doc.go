// Package host implements the rest0 HTTP host.
//
// A Host binds to one or more URI prefixes and dispatches every accepted
// request to a single Handler. The handler answers with a ResponseAction
// that the host executes against the connection before closing it.
//
// Startup runs the handler lifecycle exactly once, in order:
//
//   - Configure, if the handler implements Configurer and values were supplied
//   - Initialize, if the handler implements Initializer
//
// Any error aborts Run before a listener is opened. After that the host runs
// one accept loop per listener and one goroutine per connection. Each
// connection carries exactly one HTTP/1.x request and is closed once the
// response action completes.
//
// Prefixes follow the familiar listener syntax:
//
//	http://+:8080/            all interfaces
//	https://*:8443/           all interfaces, TLS
//	http://localhost:8080/api/
//
// Every prefix must end in "/".
package host
