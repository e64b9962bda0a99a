package store

import (
	"context"
	"fmt"

	pebblestore "github.com/laiyoufafa/distributeddatamgr-udmf/internal/storage/pebble"
	logpkg "github.com/laiyoufafa/distributeddatamgr-udmf/pkg/log"
)

// Entry is one flat key-value pair as stored by the engine.
type Entry struct {
	Key   []byte
	Value []byte
}

// SyncMode selects the direction of a multi-device sync request.
type SyncMode int

// Sync modes
const (
	SyncModePushOnly SyncMode = iota
	SyncModePullOnly
	SyncModePushPull
)

// SyncStatus is the per-device outcome reported by a completed sync.
type SyncStatus int

// Sync statuses
const (
	SyncStatusOK SyncStatus = iota
	SyncStatusFailed
)

// Engine is the key-value storage contract the runtime store is built
// on: exact and prefix reads, batched all-or-nothing mutations, and
// fire-and-forget multi-device sync. The production implementation is
// Pebble-backed; tests substitute fakes.
type Engine interface {
	// PutBatch applies all entries as one atomic write.
	PutBatch(ctx context.Context, entries []Entry) error
	// DeleteBatch removes all keys as one atomic write.
	DeleteBatch(ctx context.Context, keys [][]byte) error
	// GetEntries returns every entry under prefix in ascending key
	// order. Absence is an empty slice, not an error.
	GetEntries(prefix []byte) ([]Entry, error)
	// Sync requests replication to the given devices. The call returns
	// once the request is accepted; per-device outcomes arrive later via
	// onComplete from a background goroutine.
	Sync(devices []string, mode SyncMode, onComplete func(map[string]SyncStatus)) error
	Close() error
}

// DeviceSyncer pushes a snapshot of entries to one remote device. It is
// the transport seam behind Engine.Sync.
type DeviceSyncer interface {
	SyncPush(deviceID string, entries []Entry) error
}

// NoopSyncer accepts every push without transferring anything. Used when
// no device transport is configured.
type NoopSyncer struct{}

// SyncPush implements DeviceSyncer.
func (NoopSyncer) SyncPush(string, []Entry) error { return nil }

// pebbleEngine adapts the Pebble wrapper to the Engine contract.
type pebbleEngine struct {
	db         *pebblestore.DB
	syncer     DeviceSyncer
	syncPrefix []byte
	logger     logpkg.Logger
}

func newPebbleEngine(db *pebblestore.DB, syncer DeviceSyncer, syncPrefix []byte, logger logpkg.Logger) *pebbleEngine {
	if syncer == nil {
		syncer = NoopSyncer{}
	}
	return &pebbleEngine{db: db, syncer: syncer, syncPrefix: syncPrefix, logger: logger}
}

func (e *pebbleEngine) PutBatch(ctx context.Context, entries []Entry) error {
	puts := make([]pebblestore.Entry, len(entries))
	for i, en := range entries {
		puts[i] = pebblestore.Entry{Key: en.Key, Value: en.Value}
	}
	return e.db.PutEntries(ctx, puts)
}

func (e *pebbleEngine) DeleteBatch(ctx context.Context, keys [][]byte) error {
	return e.db.DeleteKeys(ctx, keys)
}

func (e *pebbleEngine) GetEntries(prefix []byte) ([]Entry, error) {
	scanned, err := e.db.ScanPrefix(prefix)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(scanned))
	for i, en := range scanned {
		entries[i] = Entry{Key: en.Key, Value: en.Value}
	}
	return entries, nil
}

// Sync snapshots the data keyspace and pushes it to each device on a
// background goroutine. Only push-only mode is supported.
func (e *pebbleEngine) Sync(devices []string, mode SyncMode, onComplete func(map[string]SyncStatus)) error {
	if mode != SyncModePushOnly {
		return fmt.Errorf("sync mode %d not supported", mode)
	}
	if len(devices) == 0 {
		return fmt.Errorf("sync requires at least one device")
	}
	entries, err := e.GetEntries(e.syncPrefix)
	if err != nil {
		return err
	}
	go func() {
		statuses := make(map[string]SyncStatus, len(devices))
		for _, dev := range devices {
			if err := e.syncer.SyncPush(dev, entries); err != nil {
				e.logger.Warn("device sync push failed",
					logpkg.Str("device", dev), logpkg.Err(err))
				statuses[dev] = SyncStatusFailed
				continue
			}
			statuses[dev] = SyncStatusOK
		}
		if onComplete != nil {
			onComplete(statuses)
		}
	}()
	return nil
}

func (e *pebbleEngine) Close() error {
	return e.db.Close()
}
