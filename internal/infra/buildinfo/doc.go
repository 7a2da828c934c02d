// Package buildinfo exposes the version of the running respkv binary.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/respkv/internal/infra/buildinfo.Version=v1.0.0"
//
// When a field is not injected it falls back to the module and VCS data
// embedded by the Go toolchain.
package buildinfo
