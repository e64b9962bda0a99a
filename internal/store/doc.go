// Package store implements the unified data runtime store: whole
// logical objects (runtime metadata plus records) mapped onto flat
// engine keys, written and deleted as single atomic batches,
// reconstructed from prefix scans, and summarized on demand.
//
// Key layout and the engine contract are documented in keys.go and
// engine.go. Absence is never an error: Get on an unknown key returns
// an empty object, Delete on an unknown key succeeds.
package store
