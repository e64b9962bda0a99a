package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	HTTPAddr    string        `json:"httpAddr" yaml:"httpAddr"`
	DataDir     string        `json:"dataDir" yaml:"dataDir"`
	Stores      StoreDefaults `json:"stores" yaml:"stores"`
	Log         LogConfig     `json:"log" yaml:"log"`
	SyncDevices []string      `json:"syncDevices" yaml:"syncDevices"`
}

// StoreDefaults captures the baseline options applied to every store a
// process opens.
type StoreDefaults struct {
	SecurityLevel      string `json:"securityLevel" yaml:"securityLevel"`
	Fsync              string `json:"fsync" yaml:"fsync"`
	FsyncIntervalMs    int    `json:"fsyncIntervalMs" yaml:"fsyncIntervalMs"`
	CorruptionRecovery bool   `json:"corruptionRecovery" yaml:"corruptionRecovery"`
}

// LogConfig selects process-wide log level and format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		Stores: StoreDefaults{
			SecurityLevel:      "s1",
			Fsync:              "interval",
			FsyncIntervalMs:    5,
			CorruptionRecovery: true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If
// path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
