// Package version provides build version information for swiftkit and the
// User-Agent string sent with every request.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/swiftkit/version.Version=1.0.0"
package version
