// Package command provides CLI command definitions for sysvalidator.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, logger setup, shared helpers
//   - show.go: print the merged configuration
//   - check.go: validate the configuration, optionally ping the database
//   - watch.go: reprint the configuration on every file change
//   - serve.go: run the status panel
//   - remote.go, profile.go: query a running panel, saved panel profiles
//   - version.go: build information
//
// Commands follow a consistent pattern of parsing flags, loading the
// configuration directory and formatting output.
package command
