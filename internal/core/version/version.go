// Package version reports build information stamped at link time
package version

import "orderlens/internal/core/rulepack"

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service      string `json:"service"`
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	Date         string `json:"date"`
	RulesVersion int    `json:"rules_version"`
}

// Info returns the build information for service. version, commit and date are set with
// -ldflags "-X 'orderlens/internal/core/version.version=v0.1.0' -X 'orderlens/internal/core/version.commit=abcd'"
func Info(service string) BuildInfo {
	b := BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
	if rp, err := rulepack.Load(); err == nil {
		b.RulesVersion = rp.Version
	}
	return b
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
