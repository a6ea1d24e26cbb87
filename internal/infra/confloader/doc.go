// Package confloader provides configuration loading mechanism.
//
// A configuration directory holds two optional files:
//
//   - config_env_template.env: KEY=VALUE lines, '#' comments
//   - config_app_defaults.yaml: a YAML document with top-level keys
//
// Load merges both into one Mapping and requires SYSTEM_VALIDATOR_DSN to
// be a string starting with "postgresql". koanf is the merge engine.
//
// Priority (highest to lowest):
//
//  1. Process environment (only with WithProcessEnv)
//  2. YAML document
//  3. Env-style file
//
// Reloader and Watcher re-run Load when either file changes.
package confloader
