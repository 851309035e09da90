// Package settings provides build metadata, per-run CLI parameters, and
// context helpers shared by the petsview command and its packages.
package settings

import "time"

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "petsview"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings for a single execution of the CLI.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigFile  string
	Timeout     time.Duration
	Interactive bool
	NoColor     bool
}

// NewCliParams returns the defaults used before flags are applied.
// Interactive mode is the default because the root command runs the TUI.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Timeout:     10 * time.Second,
		Interactive: true,
	}
}
