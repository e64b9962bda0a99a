package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("default http addr")
	}
	if cfg.Stores.Fsync != "interval" {
		t.Fatalf("default fsync mode")
	}
	if !cfg.Stores.CorruptionRecovery {
		t.Fatalf("default corruption recovery should be on")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("default log config")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "udmf.json")
	data := []byte(`{"httpAddr":":9090","dataDir":"/tmp/udmf","stores":{"securityLevel":"s2","fsync":"always"},"syncDevices":["devA","devB"]}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090")
	}
	if cfg.Stores.SecurityLevel != "s2" || cfg.Stores.Fsync != "always" {
		t.Fatalf("store defaults not loaded: %+v", cfg.Stores)
	}
	// untouched fields keep defaults
	if cfg.Stores.FsyncIntervalMs != 5 {
		t.Fatalf("expected default fsync interval, got %d", cfg.Stores.FsyncIntervalMs)
	}
	if len(cfg.SyncDevices) != 2 {
		t.Fatalf("sync devices: %v", cfg.SyncDevices)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "udmf.yaml")
	data := []byte("httpAddr: \":7070\"\nstores:\n  fsync: never\nlog:\n  level: debug\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("expected :7070, got %q", cfg.HTTPAddr)
	}
	if cfg.Stores.Fsync != "never" {
		t.Fatalf("expected never, got %q", cfg.Stores.Fsync)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug, got %q", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("UDMF_HTTP_ADDR", ":6060")
	os.Setenv("UDMF_FSYNC", "always")
	os.Setenv("UDMF_SYNC_DEVICES", "devA, devB,")
	t.Cleanup(func() {
		os.Unsetenv("UDMF_HTTP_ADDR")
		os.Unsetenv("UDMF_FSYNC")
		os.Unsetenv("UDMF_SYNC_DEVICES")
	})
	FromEnv(&cfg)
	if cfg.HTTPAddr != ":6060" {
		t.Fatalf("env override addr")
	}
	if cfg.Stores.Fsync != "always" {
		t.Fatalf("env override fsync")
	}
	if len(cfg.SyncDevices) != 2 || cfg.SyncDevices[0] != "devA" || cfg.SyncDevices[1] != "devB" {
		t.Fatalf("env override devices: %v", cfg.SyncDevices)
	}
}
