package pebblestore

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each committed batch/write.
	FsyncModeAlways
	// FsyncModeInterval enables group-commit by allowing Pebble to coalesce WAL
	// syncs for operations within the configured interval.
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the application. Pebble may
	// still sync based on its own policies. This mode trades durability latency
	// for throughput and should be used with care.
	FsyncModeNever
)

// SecurityLevel mirrors the caller-declared sensitivity of a store. Pebble
// does not encrypt at rest; the level is recorded so the session owner can
// place the store directory accordingly.
type SecurityLevel int

const (
	SecurityLevelS0 SecurityLevel = iota
	SecurityLevelS1
	SecurityLevelS2
	SecurityLevelS3
	SecurityLevelS4
)

// Options configures the Pebble store wrapper.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// CreateIfMissing allows creating a fresh store; when false, opening a
	// nonexistent store fails.
	CreateIfMissing bool
	// MemoryOnly backs the store with an in-memory filesystem. Nothing
	// touches disk; DataDir becomes a namespace inside the memory FS.
	MemoryOnly bool
	// SecurityLevel records the declared sensitivity of the stored data.
	SecurityLevel SecurityLevel
	// CorruptionRecovery removes and recreates the store directory when
	// opening fails with a corruption error.
	CorruptionRecovery bool
	// Fsync determines when to sync the WAL.
	Fsync FsyncMode
	// FsyncInterval controls group-commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// PebbleOptions allows advanced tuning of Pebble. If nil, sensible defaults are used.
	PebbleOptions *pebble.Options
	// Metrics allows observing read/write/commit latencies and sizes. Optional.
	Metrics MetricsHook
}

// MetricsHook is a minimal hook surface for storage observations.
type MetricsHook interface {
	ObserveWrite(elapsed time.Duration, bytes int)
	ObserveRead(elapsed time.Duration, bytes int)
	ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int)
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveWrite(time.Duration, int)            {}
func (NoopMetrics) ObserveRead(time.Duration, int)             {}
func (NoopMetrics) ObserveBatchCommit(time.Duration, int, int) {}

// Entry is one scanned key-value pair. Both slices are copies owned by
// the caller.
type Entry struct {
	Key   []byte
	Value []byte
}

// DB wraps a Pebble database instance with fsync policy and basic helpers.
type DB struct {
	inner     *pebble.DB
	writeSync bool
	metrics   MetricsHook
}

// Open creates or opens a Pebble database with the provided options.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebble: Options.DataDir is required")
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	if opts.MemoryOnly {
		po.FS = vfs.NewMem()
	}
	if !opts.CreateIfMissing {
		po.ErrorIfNotExists = true
	}

	// Configure group-commit via WALMinSyncInterval when desired.
	switch opts.Fsync {
	case FsyncModeAlways:
		// Force Sync on each write. WALMinSyncInterval left at default (0).
	case FsyncModeInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return opts.FsyncInterval }
	case FsyncModeNever:
		// Neither set WALMinSyncInterval nor Sync on writes.
	default:
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil && opts.CorruptionRecovery && !opts.MemoryOnly && pebble.IsCorruptionError(err) {
		if rmErr := os.RemoveAll(opts.DataDir); rmErr != nil {
			return nil, rmErr
		}
		po.ErrorIfNotExists = false
		inner, err = pebble.Open(opts.DataDir, po)
	}
	if err != nil {
		return nil, err
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &DB{
		inner:     inner,
		writeSync: opts.Fsync == FsyncModeAlways,
		metrics:   metrics,
	}, nil
}

// Close closes the Pebble database.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// NewBatch creates a new batch for atomic multi-key updates.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits the provided batch with the configured fsync policy.
func (db *DB) CommitBatch(ctx context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebble: nil batch")
	}
	start := time.Now()
	size := b.Len()
	defer db.metrics.ObserveBatchCommit(time.Since(start), 0, size)

	syncMode := pebble.NoSync
	if db.writeSync {
		syncMode = pebble.Sync
	}
	return b.Commit(syncMode)
}

// PutEntries writes all entries as a single committed batch.
func (db *DB) PutEntries(ctx context.Context, entries []Entry) error {
	b := db.inner.NewBatch()
	defer b.Close()
	for _, e := range entries {
		if err := b.Set(e.Key, e.Value, nil); err != nil {
			return err
		}
	}
	return db.CommitBatch(ctx, b)
}

// DeleteKeys removes all keys as a single committed batch.
func (db *DB) DeleteKeys(ctx context.Context, keys [][]byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	for _, k := range keys {
		if err := b.Delete(k, nil); err != nil {
			return err
		}
	}
	return db.CommitBatch(ctx, b)
}

// Set sets a key to a value using a small internal batch respecting fsync policy.
func (db *DB) Set(key, value []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Delete removes a key using a small internal batch respecting fsync policy.
func (db *DB) Delete(key []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Get copies the value for the given key.
func (db *DB) Get(key []byte) ([]byte, error) {
	start := time.Now()
	val, closer, err := db.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	buf := append([]byte(nil), val...)
	db.metrics.ObserveRead(time.Since(start), len(buf))
	return buf, nil
}

// ScanPrefix returns every entry whose key starts with prefix, in
// ascending key order. An empty result is not an error.
func (db *DB) ScanPrefix(prefix []byte) ([]Entry, error) {
	iterOpts := &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	}
	it, err := db.inner.NewIter(iterOpts)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	start := time.Now()
	var entries []Entry
	var total int
	for it.First(); it.Valid(); it.Next() {
		k := append([]byte(nil), it.Key()...)
		v, err := it.ValueAndErr()
		if err != nil {
			return nil, err
		}
		vc := append([]byte(nil), v...)
		entries = append(entries, Entry{Key: k, Value: vc})
		total += len(k) + len(vc)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	db.metrics.ObserveRead(time.Since(start), total)
	return entries, nil
}

// NewIter creates a raw Pebble iterator with the provided options.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix, or nil when the prefix is all 0xff.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
