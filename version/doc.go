// Package version reports build information for cosy binaries.
//
// Version, git commit, branch and build time are set at compile time via
// -ldflags:
//
//	go build -ldflags "-X github.com/cosyframework/cosy/version.Version=1.0.0" ./cmd/cosy
package version
