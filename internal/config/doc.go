// Package config loads process configuration from JSON or YAML files
// with a UDMF_* environment overlay, and resolves the default data
// directory for the host OS.
package config
