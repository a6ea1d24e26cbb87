// Package localserver serves the status panel on a Unix domain socket.
//
// The socket is created with owner-only permissions, so file system
// access controls who may reach it. It carries the same routes as the
// TCP listener and is meant for operators on the host.
package localserver
