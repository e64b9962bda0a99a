// Package runtime wires configuration and store sessions for a
// single-node service process.
package runtime
