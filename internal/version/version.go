// Package version exposes build metadata injected via -ldflags.
package version

var (
	// Version is the released version of tcrbwatch. Set at build time.
	Version = "dev"
	// Commit is the git commit hash the binary was built from.
	Commit = "unknown"
	// BuildDate is the UTC build timestamp.
	BuildDate = "unknown"
)
