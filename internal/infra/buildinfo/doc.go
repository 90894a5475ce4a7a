// Package buildinfo exposes build-time information for rest0-server.
//
// Version and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/rest0-go/internal/infra/buildinfo.Version=v1.0.0"
//
// When Commit is not injected it is taken from the VCS stamp the Go
// toolchain embeds in the binary, if any.
package buildinfo
