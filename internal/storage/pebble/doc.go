// Package pebblestore provides a thin wrapper around Pebble with fsync
// policy, batched multi-key mutations, prefix scans, and minimal metrics
// hooks.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir:         "./data/store",
//	    CreateIfMissing: true,
//	    Fsync:           pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Atomic multi-key writes
//	_ = db.PutEntries(ctx, []pebblestore.Entry{{Key: k, Value: v}})
//
//	// Range reads
//	entries, _ := db.ScanPrefix([]byte("udmf://"))
package pebblestore
