package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	pebblestore "github.com/laiyoufafa/distributeddatamgr-udmf/internal/storage/pebble"
	"github.com/laiyoufafa/distributeddatamgr-udmf/internal/tlv"
	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/id"
	logpkg "github.com/laiyoufafa/distributeddatamgr-udmf/pkg/log"
	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/unified"
)

// EntryCodec marshals runtime metadata and records to the opaque byte
// values stored by the engine.
type EntryCodec interface {
	EncodeRuntime(rt *unified.Runtime) ([]byte, error)
	DecodeRuntime(b []byte) (*unified.Runtime, error)
	EncodeRecord(r unified.Record) ([]byte, error)
	DecodeRecord(b []byte) (unified.Record, error)
}

// Options configures one runtime store session.
type Options struct {
	// StoreID names the store; it becomes a directory under BaseDir.
	StoreID string
	// BaseDir is the root directory holding all store directories.
	BaseDir string
	// CreateIfMissing allows creating a fresh store directory.
	CreateIfMissing bool
	// MemoryOnly keeps the store entirely in memory (tests, ephemeral
	// transfers).
	MemoryOnly bool
	// SecurityLevel is the declared sensitivity of the stored data.
	SecurityLevel pebblestore.SecurityLevel
	// CorruptionRecovery recreates the store when opening hits a
	// corruption error.
	CorruptionRecovery bool
	// Fsync selects the WAL durability policy.
	Fsync pebblestore.FsyncMode
	// FsyncInterval is the group-commit window when Fsync is
	// FsyncModeInterval.
	FsyncInterval time.Duration
	// Syncer transports entries to remote devices; nil disables
	// transfer (pushes are accepted and dropped).
	Syncer DeviceSyncer
	// Codec overrides the entry codec; nil selects the TLV codec.
	Codec EntryCodec
	// Logger receives store logs; nil selects a default logger.
	Logger logpkg.Logger
}

// DefaultOptions returns the options a service process uses for a store.
func DefaultOptions(storeID, baseDir string) Options {
	return Options{
		StoreID:            storeID,
		BaseDir:            baseDir,
		CreateIfMissing:    true,
		SecurityLevel:      pebblestore.SecurityLevelS1,
		CorruptionRecovery: true,
		Fsync:              pebblestore.FsyncModeInterval,
		FsyncInterval:      5 * time.Millisecond,
	}
}

// RuntimeStore persists unified data objects as sets of flat key-value
// entries in one engine session. It holds no object state across calls;
// the engine owns the durable form.
//
// Concurrent calls against the same object key are not serialized here:
// two racing Puts resolve to whichever batch the engine commits last.
type RuntimeStore struct {
	storeID  string
	eng      Engine
	codec    EntryCodec
	logger   logpkg.Logger
	deviceID string

	mu     sync.Mutex
	closed bool
}

// Open acquires an engine session for the store and registers it in the
// persisted store registry.
func Open(opts Options) (*RuntimeStore, error) {
	if opts.StoreID == "" {
		return nil, fmt.Errorf("%w: empty store id", ErrInvalidInput)
	}
	if opts.BaseDir == "" && !opts.MemoryOnly {
		return nil, fmt.Errorf("%w: empty base dir", ErrInvalidInput)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger().WithComponent("store")
	}
	logger = logger.With(logpkg.Str("store_id", opts.StoreID))

	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:            filepath.Join(opts.BaseDir, opts.StoreID),
		CreateIfMissing:    opts.CreateIfMissing,
		MemoryOnly:         opts.MemoryOnly,
		SecurityLevel:      opts.SecurityLevel,
		CorruptionRecovery: opts.CorruptionRecovery,
		Fsync:              opts.Fsync,
		FsyncInterval:      opts.FsyncInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open engine: %v", ErrStore, err)
	}

	codec := opts.Codec
	if codec == nil {
		codec = tlv.Codec{}
	}
	eng := newPebbleEngine(db, opts.Syncer, []byte(DataPrefix), logger)
	s := newRuntimeStore(opts.StoreID, eng, codec, logger)

	if _, err := ensureStoreMeta(eng, opts.StoreID); err != nil {
		_ = eng.Close()
		return nil, err
	}
	deviceID, err := ensureDeviceIdentity(eng)
	if err != nil {
		_ = eng.Close()
		return nil, err
	}
	s.deviceID = deviceID
	logger.Info("store opened", logpkg.Str("device_id", deviceID))
	return s, nil
}

func newRuntimeStore(storeID string, eng Engine, codec EntryCodec, logger logpkg.Logger) *RuntimeStore {
	return &RuntimeStore{storeID: storeID, eng: eng, codec: codec, logger: logger}
}

// StoreID returns the store name.
func (s *RuntimeStore) StoreID() string { return s.storeID }

// DeviceID returns the persisted identity of this device.
func (s *RuntimeStore) DeviceID() string { return s.deviceID }

// Put persists the whole object as one batched engine write: one entry
// per non-nil record plus the runtime entry. Records without a uid get
// one minted. Any encode failure aborts before anything is written.
func (s *RuntimeStore) Put(data *unified.Data) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if data == nil || data.Runtime == nil || !data.Runtime.Key.IsValid() {
		return fmt.Errorf("%w: missing runtime or key", ErrInvalidInput)
	}
	key := data.Runtime.Key.String()
	if data.Runtime.DeviceID == "" {
		data.Runtime.DeviceID = s.deviceID
	}

	entries := make([]Entry, 0, len(data.Records)+1)
	for _, rec := range data.Records {
		if rec == nil {
			continue
		}
		// A record appended without AddRecord may carry no uid; an
		// empty uid would store it under "key/" where Get never looks.
		if rec.UID() == "" {
			rec.SetUID(id.NextString())
		}
		b, err := s.codec.EncodeRecord(rec)
		if err != nil {
			return fmt.Errorf("%w: marshal record %q: %v", ErrInvalidInput, rec.UID(), err)
		}
		entries = append(entries, Entry{Key: recordKey(key, rec.UID()), Value: b})
	}

	rb, err := s.codec.EncodeRuntime(data.Runtime)
	if err != nil {
		return fmt.Errorf("%w: marshal runtime: %v", ErrEncode, err)
	}
	entries = append(entries, Entry{Key: objectKey(key), Value: rb})

	if err := s.eng.PutBatch(context.Background(), entries); err != nil {
		return fmt.Errorf("%w: put batch for %q: %v", ErrStore, key, err)
	}
	return nil
}

// Get reconstructs the object stored under key. An absent object is an
// empty Data with a nil error. Records keep engine scan order.
func (s *RuntimeStore) Get(key string) (*unified.Data, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidInput)
	}
	entries, err := s.eng.GetEntries([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: scan %q: %v", ErrStore, key, err)
	}
	data := unified.NewData()
	if len(entries) == 0 {
		return data, nil
	}
	for _, e := range entries {
		if isRuntimeEntry(e.Key, key) {
			rt, err := s.codec.DecodeRuntime(e.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: runtime of %q: %v", ErrDecode, key, err)
			}
			data.Runtime = rt
			continue
		}
		// Entries of a sibling id that shares a plain string prefix
		// (g1 vs g12) land in the same scan; only separator-aligned
		// keys are records of this object.
		if !isRecordEntry(e.Key, key) {
			continue
		}
		rec, err := s.codec.DecodeRecord(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: record %q: %v", ErrDecode, e.Key, err)
		}
		data.Records = append(data.Records, rec)
	}
	return data, nil
}

// GetSummary aggregates record byte sizes by type category for the
// object stored under key.
func (s *RuntimeStore) GetSummary(key string) (unified.Summary, error) {
	data, err := s.Get(key)
	if err != nil {
		return unified.Summary{}, err
	}
	return data.Summarize(), nil
}

// Update replaces the stored object with data: Delete then Put, two
// separate engine batches. A Put failure after a successful Delete
// leaves the object absent; callers that need the old value on failure
// must re-Put it themselves.
func (s *RuntimeStore) Update(data *unified.Data) error {
	if data == nil || data.Runtime == nil || !data.Runtime.Key.IsValid() {
		return fmt.Errorf("%w: missing runtime or key", ErrInvalidInput)
	}
	if err := s.Delete(data.Runtime.Key.String()); err != nil {
		return err
	}
	return s.Put(data)
}

// Delete removes the runtime entry and every record entry of key as one
// batched engine delete. Deleting an absent object succeeds.
func (s *RuntimeStore) Delete(key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidInput)
	}
	entries, err := s.eng.GetEntries([]byte(key))
	if err != nil {
		return fmt.Errorf("%w: scan %q: %v", ErrStore, key, err)
	}
	if len(entries) == 0 {
		return nil
	}
	keys := make([][]byte, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	if err := s.eng.DeleteBatch(context.Background(), keys); err != nil {
		return fmt.Errorf("%w: delete batch for %q: %v", ErrStore, key, err)
	}
	return nil
}

// DeleteBatch deletes each key in order and stops at the first failure.
// Earlier deletions are not rolled back; later keys are not attempted.
func (s *RuntimeStore) DeleteBatch(keys []string) error {
	if len(keys) == 0 {
		s.logger.Debug("delete batch: nothing to delete")
		return nil
	}
	for _, key := range keys {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// GetDatas enumerates every object under prefix. A scanned key is an
// object key iff its separator count matches the top-level depth, so an
// id that is a plain string-prefix of another id never captures the
// other's records.
func (s *RuntimeStore) GetDatas(prefix string) ([]*unified.Data, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty prefix", ErrInvalidInput)
	}
	entries, err := s.eng.GetEntries([]byte(prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: scan %q: %v", ErrStore, prefix, err)
	}
	var datas []*unified.Data
	for _, e := range entries {
		if !isObjectKey(e.Key) {
			continue
		}
		data, err := s.Get(string(e.Key))
		if err != nil {
			return nil, err
		}
		datas = append(datas, data)
	}
	return datas, nil
}

// Sync requests a push-only replication of the store's data keyspace to
// the given devices. The call succeeds once the engine accepts the
// request; per-device completion is only logged.
func (s *RuntimeStore) Sync(devices []string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	onComplete := func(statuses map[string]SyncStatus) {
		for dev, st := range statuses {
			if st != SyncStatusOK {
				s.logger.Warn("sync failed for device", logpkg.Str("device", dev))
				continue
			}
			s.logger.Debug("sync completed for device", logpkg.Str("device", dev))
		}
	}
	if err := s.eng.Sync(devices, SyncModePushOnly, onComplete); err != nil {
		return fmt.Errorf("%w: sync: %v", ErrStore, err)
	}
	return nil
}

// Clear removes every unified data entry in the store.
func (s *RuntimeStore) Clear() error {
	return s.Delete(DataPrefix)
}

// Close releases the engine session. Safe to call multiple times; all
// operations after Close fail with ErrClosed.
func (s *RuntimeStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.eng.Close(); err != nil {
		return fmt.Errorf("%w: close engine: %v", ErrStore, err)
	}
	s.logger.Info("store closed")
	return nil
}

func (s *RuntimeStore) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
