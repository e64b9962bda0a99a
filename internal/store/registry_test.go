package store

import (
	"testing"

	"github.com/laiyoufafa/distributeddatamgr-udmf/internal/tlv"
	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/log"
)

func TestEnsureStoreMetaIdempotent(t *testing.T) {
	eng := newFakeEngine()
	first, err := ensureStoreMeta(eng, "drag")
	if err != nil {
		t.Fatalf("ensureStoreMeta: %v", err)
	}
	if first.StoreID != "drag" || first.CreatedAtMs == 0 {
		t.Fatalf("meta = %+v", first)
	}
	second, err := ensureStoreMeta(eng, "drag")
	if err != nil {
		t.Fatalf("second ensureStoreMeta: %v", err)
	}
	if second != first {
		t.Fatalf("meta changed on re-ensure: %+v vs %+v", second, first)
	}
	entries, err := eng.GetEntries([]byte(storeMetaPrefix))
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("registry holds %d entries, want 1", len(entries))
	}
}

func TestEnsureDeviceIdentityStable(t *testing.T) {
	eng := newFakeEngine()
	first, err := ensureDeviceIdentity(eng)
	if err != nil {
		t.Fatalf("ensureDeviceIdentity: %v", err)
	}
	if first == "" {
		t.Fatalf("minted device id is empty")
	}
	second, err := ensureDeviceIdentity(eng)
	if err != nil {
		t.Fatalf("second ensureDeviceIdentity: %v", err)
	}
	if second != first {
		t.Fatalf("device id changed: %q vs %q", second, first)
	}
}

func TestClearSparesRegistry(t *testing.T) {
	eng := newFakeEngine()
	if _, err := ensureStoreMeta(eng, "drag"); err != nil {
		t.Fatalf("ensureStoreMeta: %v", err)
	}
	dev, err := ensureDeviceIdentity(eng)
	if err != nil {
		t.Fatalf("ensureDeviceIdentity: %v", err)
	}

	s := newRuntimeStore("drag", eng, tlv.Codec{}, log.NewNopLogger())
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := ensureDeviceIdentity(eng)
	if err != nil {
		t.Fatalf("ensureDeviceIdentity after clear: %v", err)
	}
	if got != dev {
		t.Fatalf("clear wiped the device identity")
	}
	if !eng.has(storeMetaPrefix + "drag") {
		t.Fatalf("clear wiped the store registry")
	}
}
