// SPDX-License-Identifier: MIT
// Package build exposes application name, version, commit, and build time
// embedded at compile time via -ldflags, e.g.:
//
//	go build -ldflags "-X sdrwatch/pkg/build.buildName=sdrwatch -X sdrwatch/pkg/build.buildVersion=0.1.0"
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
	Uuid    string
}

var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildUuid    string
	buildFlags   = &ldFlags{
		Name:    "unknown",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
		Uuid:    "unknown",
	}
)

// Initialize copies build information from the ldflags variables into
// buildFlags. Call it early in program startup; it errors if any
// required flag was left unset by the build.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}
	if buildUuid == "" {
		return fmt.Errorf("BuildUuid is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion
	buildFlags.Uuid = buildUuid

	return nil
}

// GetBuildFlags returns the current build information. Before Initialize
// succeeds, every field reads "unknown".
func GetBuildFlags() *ldFlags {
	return buildFlags
}
