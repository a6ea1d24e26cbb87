// Package config holds the sysvalidator CLI's own settings: named
// status panel profiles used by the remote commands.
//
// The file lives at $XDG_CONFIG_HOME/sysvalidator/cli.yaml (or the
// platform equivalent) unless SYSTEM_VALIDATOR_CLI_CONFIG points
// elsewhere. A missing file is the same as an empty one.
package config
