// Package serverrun boots the service process: runtime, HTTP server,
// signal handling.
package serverrun
