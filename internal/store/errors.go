package store

import "errors"

// Error kinds surfaced by the runtime store. Callers classify failures
// with errors.Is. Absence of an object is never an error: Get returns an
// empty object and Delete succeeds.
var (
	// ErrInvalidInput marks malformed caller input, including records
	// that fail to encode.
	ErrInvalidInput = errors.New("store: invalid input")

	// ErrEncode marks an entry codec failure while marshalling runtime
	// metadata.
	ErrEncode = errors.New("store: encode failed")

	// ErrDecode marks an entry codec failure while reading back a
	// persisted entry.
	ErrDecode = errors.New("store: decode failed")

	// ErrStore marks an engine rejection of a read, write, or sync.
	ErrStore = errors.New("store: engine operation failed")

	// ErrClosed marks use of a store after Close.
	ErrClosed = errors.New("store: closed")
)
