// Package output provides output formatting for the sysvalidator CLI.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: Table rendering with wide mode support
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//   - spinner.go: Progress animation for slow checks
//
// Command results implement Tabler. Configuration mappings are laid out
// one leaf per row and plain structs as field/value pairs.
// JSON and YAML output is meant for scripting.
package output
