// Package main provides the entry point for sysvalidator.
//
// sysvalidator loads a configuration directory holding
// config_env_template.env and config_app_defaults.yaml, merges the two
// and checks that SYSTEM_VALIDATOR_DSN is a PostgreSQL DSN:
//
//   - Show the merged configuration with secrets masked
//   - Check it, optionally connecting to the database
//   - Watch it and reprint on every change
//   - Serve a read-only status panel with Prometheus metrics
//   - Query a running panel, over TCP or its local socket
//
// Usage:
//
//	sysvalidator --dir /etc/app show -o yaml
//	sysvalidator --dir /etc/app check --ping
//	sysvalidator --dir /etc/app serve --addr 127.0.0.1:8000 --socket /run/sv.sock
//	sysvalidator remote --server unix:///run/sv.sock status
//
// Exit codes: 1 for general failures, 2 for a malformed document and
// 3 for a rejected DSN.
package main
