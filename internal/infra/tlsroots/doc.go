// Package tlsroots provides TLS certificate handling for the status
// panel and its client.
//
//   - roots.go: trusted CA pool for talking to a panel over HTTPS
//   - certs.go: serving certificate with reload on file change
package tlsroots
