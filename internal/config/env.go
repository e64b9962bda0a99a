package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays UDMF_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("UDMF_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("UDMF_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("UDMF_SECURITY_LEVEL"); v != "" {
		cfg.Stores.SecurityLevel = v
	}
	if v := os.Getenv("UDMF_FSYNC"); v != "" {
		cfg.Stores.Fsync = v
	}
	if v := os.Getenv("UDMF_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Stores.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("UDMF_CORRUPTION_RECOVERY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Stores.CorruptionRecovery = b
		}
	}
	if v := os.Getenv("UDMF_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("UDMF_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("UDMF_SYNC_DEVICES"); v != "" {
		parts := strings.Split(v, ",")
		cfg.SyncDevices = nil
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.SyncDevices = append(cfg.SyncDevices, p)
			}
		}
	}
}
