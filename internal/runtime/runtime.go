package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	cfgpkg "github.com/laiyoufafa/distributeddatamgr-udmf/internal/config"
	pebblestore "github.com/laiyoufafa/distributeddatamgr-udmf/internal/storage/pebble"
	"github.com/laiyoufafa/distributeddatamgr-udmf/internal/store"
	logpkg "github.com/laiyoufafa/distributeddatamgr-udmf/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir    string
	MemoryOnly bool
	Config     cfgpkg.Config
	Syncer     store.DeviceSyncer
	Logger     logpkg.Logger
}

// Runtime wires configuration and store sessions for a single-node
// instance. Stores open lazily by ID and stay cached until Close.
type Runtime struct {
	opts   Options
	logger logpkg.Logger

	mu     sync.Mutex
	stores map[string]*store.RuntimeStore
	closed bool
}

// Open validates the configuration and returns a Runtime. No store is
// opened until first use.
func Open(opts Options) (*Runtime, error) {
	if opts.DataDir == "" {
		opts.DataDir = opts.Config.DataDir
	}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	if _, err := ParseFsyncMode(opts.Config.Stores.Fsync); err != nil {
		return nil, err
	}
	if _, err := ParseSecurityLevel(opts.Config.Stores.SecurityLevel); err != nil {
		return nil, err
	}
	return &Runtime{
		opts:   opts,
		logger: opts.Logger.WithComponent("runtime"),
		stores: make(map[string]*store.RuntimeStore),
	}, nil
}

// Store returns the cached session for storeID, opening it on first use
// with the configured store defaults.
func (r *Runtime) Store(storeID string) (*store.RuntimeStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, store.ErrClosed
	}
	if s, ok := r.stores[storeID]; ok {
		return s, nil
	}

	fsync, err := ParseFsyncMode(r.opts.Config.Stores.Fsync)
	if err != nil {
		return nil, err
	}
	level, err := ParseSecurityLevel(r.opts.Config.Stores.SecurityLevel)
	if err != nil {
		return nil, err
	}
	sopts := store.DefaultOptions(storeID, r.opts.DataDir)
	sopts.MemoryOnly = r.opts.MemoryOnly
	sopts.SecurityLevel = level
	sopts.CorruptionRecovery = r.opts.Config.Stores.CorruptionRecovery
	sopts.Fsync = fsync
	sopts.FsyncInterval = time.Duration(r.opts.Config.Stores.FsyncIntervalMs) * time.Millisecond
	sopts.Syncer = r.opts.Syncer
	sopts.Logger = r.logger

	s, err := store.Open(sopts)
	if err != nil {
		return nil, err
	}
	r.stores[storeID] = s
	return s, nil
}

// CheckHealth verifies the default store answers a read.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	s, err := r.Store("drag")
	if err != nil {
		return err
	}
	_, err = s.Get(store.DataPrefix + "health/probe/ping")
	return err
}

// SyncDevices returns the configured default sync targets.
func (r *Runtime) SyncDevices() []string {
	return r.opts.Config.SyncDevices
}

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.opts.Config }

// Close closes every open store session. Safe to call multiple times.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var firstErr error
	for id, s := range r.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close store %s: %w", id, err)
		}
	}
	r.stores = nil
	return firstErr
}

// ParseFsyncMode maps a config string to the engine fsync mode.
func ParseFsyncMode(s string) (pebblestore.FsyncMode, error) {
	switch strings.ToLower(s) {
	case "", "interval":
		return pebblestore.FsyncModeInterval, nil
	case "always":
		return pebblestore.FsyncModeAlways, nil
	case "never":
		return pebblestore.FsyncModeNever, nil
	default:
		return pebblestore.FsyncModeUnspecified, fmt.Errorf("invalid fsync mode %q; use always|interval|never", s)
	}
}

// ParseSecurityLevel maps a config string to the declared store
// sensitivity.
func ParseSecurityLevel(s string) (pebblestore.SecurityLevel, error) {
	switch strings.ToLower(s) {
	case "", "s1":
		return pebblestore.SecurityLevelS1, nil
	case "s0":
		return pebblestore.SecurityLevelS0, nil
	case "s2":
		return pebblestore.SecurityLevelS2, nil
	case "s3":
		return pebblestore.SecurityLevelS3, nil
	case "s4":
		return pebblestore.SecurityLevelS4, nil
	default:
		return 0, fmt.Errorf("invalid security level %q; use s0..s4", s)
	}
}
