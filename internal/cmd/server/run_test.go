package serverrun

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	cfgpkg "github.com/laiyoufafa/distributeddatamgr-udmf/internal/config"
)

func TestOptionsDataDirFallback(t *testing.T) {
	opts := Options{Config: cfgpkg.Default()}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.DataDir == "" {
		t.Error("DataDir should be set after fallback")
	}

	opts = Options{DataDir: "/custom/data", Config: cfgpkg.Default()}
	if opts.DataDir != "/custom/data" {
		t.Errorf("provided DataDir should be preserved, got %s", opts.DataDir)
	}
}

func TestDataDirStoreSubdirectory(t *testing.T) {
	baseDir := "/tmp/udmf"
	storeDir := filepath.Join(baseDir, "store")
	if storeDir != "/tmp/udmf/store" {
		t.Errorf("store dir = %s", storeDir)
	}
}

// TestRunIntegration verifies Run can start and shut down cleanly. This
// is a minimal test since Run starts an actual server.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := cfgpkg.Default()
	cfg.Stores.Fsync = "never"
	cfg.Log.Level = "error"
	opts := Options{
		DataDir:  t.TempDir(),
		HTTPAddr: ":0",
		Config:   cfg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := Run(ctx, opts)
	if err != nil && err != context.DeadlineExceeded && err != context.Canceled {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}
