// Package version holds the build version information for Kaiwa binaries.
package version

// Version is the semantic version of the current build. Overridden at link
// time via -ldflags "-X github.com/bdobrica/Kaiwa/common/version.Version=...".
var Version = "0.1.0-dev"
