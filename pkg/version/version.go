// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/zero-day-ai/text2cypher/pkg/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime"
)

// Version is the semantic version.
var Version = "dev"

// GitCommit is the commit the binary was built from.
var GitCommit = "unknown"

// BuildTime is when the binary was built.
var BuildTime = "unknown"

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("text2cypher %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildTime, runtime.Version())
}

// Info returns the build metadata as a map for structured output.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_time": BuildTime,
		"go_version": runtime.Version(),
		"platform":   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
