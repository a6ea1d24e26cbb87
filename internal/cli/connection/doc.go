// Package connection provides the HTTP client the sysvalidator CLI uses
// to talk to a running status panel.
package connection
