// Package buildinfo provides build information for System Validator.
//
// This package exposes build-time information injected via ldflags:
//
//   - Version: Semantic version (e.g., "1.0.0")
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//
// Fields left unset fall back to the module build info recorded by the
// Go toolchain. Usage:
//
//	go build -ldflags "-X github.com/0823nobuo-png/System-Validator/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
