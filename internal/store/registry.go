package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store registry: small JSON metadata records colocated with the data,
// outside the udmf:// keyspace so Clear never touches them.

const (
	storeMetaPrefix   = "storemeta/"
	deviceIdentityKey = storeMetaPrefix + "#device"
)

// Meta describes one registered store.
type Meta struct {
	StoreID     string `json:"storeId"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

// ensureStoreMeta creates the registry record for storeID if absent.
// Idempotent: an existing record is returned unchanged.
func ensureStoreMeta(eng Engine, storeID string) (Meta, error) {
	key := []byte(storeMetaPrefix + storeID)
	entries, err := eng.GetEntries(key)
	if err != nil {
		return Meta{}, fmt.Errorf("%w: read store meta: %v", ErrStore, err)
	}
	for _, e := range entries {
		if string(e.Key) != string(key) {
			continue
		}
		var m Meta
		if json.Unmarshal(e.Value, &m) == nil && m.StoreID != "" {
			return m, nil
		}
		// corrupted record falls through to a rewrite
	}
	m := Meta{StoreID: storeID, CreatedAtMs: time.Now().UnixMilli()}
	b, err := json.Marshal(m)
	if err != nil {
		return Meta{}, fmt.Errorf("%w: marshal store meta: %v", ErrEncode, err)
	}
	if err := eng.PutBatch(context.Background(), []Entry{{Key: key, Value: b}}); err != nil {
		return Meta{}, fmt.Errorf("%w: write store meta: %v", ErrStore, err)
	}
	return m, nil
}

// ensureDeviceIdentity returns the persisted device id, minting and
// storing a fresh one on first use.
func ensureDeviceIdentity(eng Engine) (string, error) {
	key := []byte(deviceIdentityKey)
	entries, err := eng.GetEntries(key)
	if err != nil {
		return "", fmt.Errorf("%w: read device identity: %v", ErrStore, err)
	}
	for _, e := range entries {
		if string(e.Key) == string(key) && len(e.Value) > 0 {
			return string(e.Value), nil
		}
	}
	id := uuid.NewString()
	if err := eng.PutBatch(context.Background(), []Entry{{Key: key, Value: []byte(id)}}); err != nil {
		return "", fmt.Errorf("%w: write device identity: %v", ErrStore, err)
	}
	return id, nil
}
