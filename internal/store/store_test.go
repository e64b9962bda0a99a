package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/laiyoufafa/distributeddatamgr-udmf/internal/tlv"
	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/log"
	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/unified"
)

func newTestStore(t *testing.T) *RuntimeStore {
	t.Helper()
	s, err := Open(Options{
		StoreID:         "drag",
		MemoryOnly:      true,
		CreateIfMissing: true,
		Logger:          log.NewNopLogger(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestData(key unified.Key, records ...unified.Record) *unified.Data {
	data := unified.NewData()
	data.Runtime = &unified.Runtime{
		Key:            key,
		CreateTime:     time.Now().UnixMilli(),
		CreatePackage:  key.BundleName,
		RecordTotalNum: uint32(len(records)),
	}
	for _, r := range records {
		data.AddRecord(r)
	}
	return data
}

func plainText(content string) *unified.PlainText {
	return &unified.PlainText{Content: content}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	key := unified.NewKey(unified.IntentionDrag, "com.example.app")
	link := &unified.Link{URL: "https://example.com", Description: "home"}
	data := newTestData(key, plainText("hello"), link)

	if err := s.Put(data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(key.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Runtime == nil {
		t.Fatalf("round-trip lost the runtime entry")
	}
	if got.Runtime.Key != key {
		t.Fatalf("runtime key = %v, want %v", got.Runtime.Key, key)
	}
	if got.Runtime.RecordTotalNum != 2 {
		t.Fatalf("record total = %d, want 2", got.Runtime.RecordTotalNum)
	}
	if len(got.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(got.Records))
	}

	byUID := make(map[string]unified.Record, len(got.Records))
	for _, r := range got.Records {
		byUID[r.UID()] = r
	}
	pt, ok := byUID[data.Records[0].UID()].(*unified.PlainText)
	if !ok || pt.Content != "hello" {
		t.Fatalf("plain text record did not round-trip: %#v", byUID[data.Records[0].UID()])
	}
	lk, ok := byUID[link.UID()].(*unified.Link)
	if !ok || lk.URL != "https://example.com" || lk.Description != "home" {
		t.Fatalf("link record did not round-trip: %#v", byUID[link.UID()])
	}
}

func TestGetAbsentReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Get("udmf://drag/com.example.app/missing")
	if err != nil {
		t.Fatalf("Get absent: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("absent object should be empty, got %#v", got)
	}
}

func TestPutSkipsNilRecords(t *testing.T) {
	s := newTestStore(t)
	key := unified.NewKey(unified.IntentionDrag, "com.example.app")
	data := newTestData(key, plainText("kept"))
	data.Records = append(data.Records, nil)

	if err := s.Put(data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(key.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(got.Records))
	}
}

func TestPutMintsMissingRecordUID(t *testing.T) {
	s := newTestStore(t)
	key := unified.NewKey(unified.IntentionDrag, "com.example.app")
	data := newTestData(key)
	// Appended directly, so no uid was minted; the entry must not land
	// under "key/" where Get would never see it.
	data.Records = append(data.Records, plainText("hello"))

	if err := s.Put(data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if uid := data.Records[0].UID(); uid == "" {
		t.Fatalf("Put left the record without a uid")
	}
	got, err := s.Get(key.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Records) != 1 {
		t.Fatalf("round-trip lost the record: got %d records, want 1", len(got.Records))
	}
	pt, ok := got.Records[0].(*unified.PlainText)
	if !ok || pt.Content != "hello" {
		t.Fatalf("record did not round-trip: %#v", got.Records[0])
	}
}

func TestPutRejectsMissingRuntime(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put(nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Put(nil) = %v, want ErrInvalidInput", err)
	}
	if err := s.Put(unified.NewData()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Put without runtime = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	key := unified.NewKey(unified.IntentionDrag, "com.example.app")

	if err := s.Delete(key.String()); err != nil {
		t.Fatalf("Delete of absent object: %v", err)
	}
	if err := s.Put(newTestData(key, plainText("x"))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(key.String()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := s.Get(key.String())
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("object survived delete: %#v", got)
	}
	if err := s.Delete(key.String()); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestUpdateReplaces(t *testing.T) {
	s := newTestStore(t)
	key := unified.NewKey(unified.IntentionDrag, "com.example.app")
	if err := s.Put(newTestData(key, plainText("old"), plainText("old2"))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Update(newTestData(key, plainText("new"))); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Get(key.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Records) != 1 {
		t.Fatalf("got %d records after update, want 1", len(got.Records))
	}
	pt, ok := got.Records[0].(*unified.PlainText)
	if !ok || pt.Content != "new" {
		t.Fatalf("update kept stale record: %#v", got.Records[0])
	}
}

func TestGetSummary(t *testing.T) {
	s := newTestStore(t)
	key := unified.NewKey(unified.IntentionDrag, "com.example.app")
	data := newTestData(key,
		plainText(strings.Repeat("a", 10)),
		plainText(strings.Repeat("b", 30)),
		&unified.Link{URL: strings.Repeat("c", 20)},
	)
	if err := s.Put(data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sum, err := s.GetSummary(key.String())
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum.TotalSize != 60 {
		t.Fatalf("total size = %d, want 60", sum.TotalSize)
	}
	if got := sum.Summary["general.plain-text"]; got != 40 {
		t.Fatalf("plain-text bucket = %d, want 40", got)
	}
	if got := sum.Summary["general.hyperlink"]; got != 20 {
		t.Fatalf("hyperlink bucket = %d, want 20", got)
	}
	if len(sum.Summary) != 2 {
		t.Fatalf("summary has %d buckets, want 2: %v", len(sum.Summary), sum.Summary)
	}
}

// opaqueRecord is a kind the entry codec does not know how to marshal.
type opaqueRecord struct {
	uid string
}

func (r *opaqueRecord) UID() string        { return r.uid }
func (r *opaqueRecord) SetUID(uid string)  { r.uid = uid }
func (r *opaqueRecord) Type() unified.Type { return unified.Type(999) }
func (r *opaqueRecord) Size() int64        { return 0 }

func TestPutEncodeFailureWritesNothing(t *testing.T) {
	s := newTestStore(t)
	key := unified.NewKey(unified.IntentionDrag, "com.example.app")
	data := newTestData(key, plainText("good"), &opaqueRecord{uid: "bad"})

	if err := s.Put(data); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Put with unencodable record = %v, want ErrInvalidInput", err)
	}
	got, err := s.Get(key.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("failed put left entries behind: %#v", got)
	}
}

func TestGetIgnoresSiblingWithSharedPrefix(t *testing.T) {
	s := newTestStore(t)
	k1 := unified.Key{Intention: unified.IntentionDrag, BundleName: "com.example.app", GroupID: "g1"}
	k12 := unified.Key{Intention: unified.IntentionDrag, BundleName: "com.example.app", GroupID: "g12"}
	if err := s.Put(newTestData(k1, plainText("one"))); err != nil {
		t.Fatalf("Put g1: %v", err)
	}
	if err := s.Put(newTestData(k12, plainText("two"), plainText("three"))); err != nil {
		t.Fatalf("Put g12: %v", err)
	}

	got, err := s.Get(k1.String())
	if err != nil {
		t.Fatalf("Get g1: %v", err)
	}
	if len(got.Records) != 1 {
		t.Fatalf("g1 has %d records, want 1 (g12 entries leaked in)", len(got.Records))
	}
	if got.Runtime == nil || got.Runtime.Key != k1 {
		t.Fatalf("g1 runtime = %#v", got.Runtime)
	}
}

func TestGetDatasEnumeratesObjects(t *testing.T) {
	s := newTestStore(t)
	k1 := unified.Key{Intention: unified.IntentionDrag, BundleName: "com.example.app", GroupID: "g1"}
	k12 := unified.Key{Intention: unified.IntentionDrag, BundleName: "com.example.app", GroupID: "g12"}
	kOther := unified.Key{Intention: unified.IntentionDataHub, BundleName: "com.example.app", GroupID: "g9"}
	for _, d := range []*unified.Data{
		newTestData(k1, plainText("one")),
		newTestData(k12, plainText("two"), plainText("three")),
		newTestData(kOther, plainText("four")),
	} {
		if err := s.Put(d); err != nil {
			t.Fatalf("Put %s: %v", d.Runtime.Key, err)
		}
	}

	datas, err := s.GetDatas("udmf://drag/com.example.app/")
	if err != nil {
		t.Fatalf("GetDatas: %v", err)
	}
	if len(datas) != 2 {
		t.Fatalf("got %d objects, want 2", len(datas))
	}
	recordCounts := make(map[string]int, len(datas))
	for _, d := range datas {
		if d.Runtime == nil {
			t.Fatalf("object without runtime: %#v", d)
		}
		recordCounts[d.Runtime.Key.GroupID] = len(d.Records)
	}
	if recordCounts["g1"] != 1 || recordCounts["g12"] != 2 {
		t.Fatalf("record counts = %v, want g1:1 g12:2", recordCounts)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	k1 := unified.NewKey(unified.IntentionDrag, "com.example.app")
	k2 := unified.NewKey(unified.IntentionDataHub, "com.other.app")
	for _, k := range []unified.Key{k1, k2} {
		if err := s.Put(newTestData(k, plainText("x"))); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	datas, err := s.GetDatas(DataPrefix)
	if err != nil {
		t.Fatalf("GetDatas after clear: %v", err)
	}
	if len(datas) != 0 {
		t.Fatalf("clear left %d objects behind", len(datas))
	}
	// The store stays usable.
	if err := s.Put(newTestData(k1, plainText("again"))); err != nil {
		t.Fatalf("Put after clear: %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := s.Put(newTestData(unified.NewKey(unified.IntentionDrag, "b"), plainText("x"))); !errors.Is(err, ErrClosed) {
		t.Fatalf("Put after close = %v, want ErrClosed", err)
	}
	if _, err := s.Get("udmf://drag/b/g"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Get after close = %v, want ErrClosed", err)
	}
}

// recordingSyncer captures pushes so tests can wait for the background
// sync goroutine.
type recordingSyncer struct {
	mu      sync.Mutex
	pushes  map[string]int
	failFor string
	done    chan string
}

func newRecordingSyncer(buf int) *recordingSyncer {
	return &recordingSyncer{pushes: map[string]int{}, done: make(chan string, buf)}
}

func (r *recordingSyncer) SyncPush(deviceID string, entries []Entry) error {
	r.mu.Lock()
	r.pushes[deviceID] = len(entries)
	r.mu.Unlock()
	r.done <- deviceID
	if deviceID == r.failFor {
		return errors.New("device unreachable")
	}
	return nil
}

func TestSyncPushesToEachDevice(t *testing.T) {
	syncer := newRecordingSyncer(2)
	s, err := Open(Options{
		StoreID:         "drag",
		MemoryOnly:      true,
		CreateIfMissing: true,
		Syncer:          syncer,
		Logger:          log.NewNopLogger(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	key := unified.NewKey(unified.IntentionDrag, "com.example.app")
	if err := s.Put(newTestData(key, plainText("x"))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Sync([]string{"devA", "devB"}); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-syncer.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("sync push %d never arrived", i)
		}
	}
	syncer.mu.Lock()
	defer syncer.mu.Unlock()
	for _, dev := range []string{"devA", "devB"} {
		if syncer.pushes[dev] < 2 {
			t.Fatalf("device %s got %d entries, want the runtime and record entries", dev, syncer.pushes[dev])
		}
	}
}

func TestSyncRequiresDevices(t *testing.T) {
	s := newTestStore(t)
	if err := s.Sync(nil); !errors.Is(err, ErrStore) {
		t.Fatalf("Sync with no devices = %v, want ErrStore", err)
	}
}

// fakeEngine is an in-memory Engine with failure knobs.
type fakeEngine struct {
	mu          sync.Mutex
	data        map[string][]byte
	putErr      error
	deleteErrOn string
	deleteCalls int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{data: map[string][]byte{}}
}

func (f *fakeEngine) PutBatch(_ context.Context, entries []Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	for _, e := range entries {
		f.data[string(e.Key)] = append([]byte(nil), e.Value...)
	}
	return nil
}

func (f *fakeEngine) DeleteBatch(_ context.Context, keys [][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	for _, k := range keys {
		if f.deleteErrOn != "" && strings.HasPrefix(string(k), f.deleteErrOn) {
			return fmt.Errorf("injected delete failure for %q", k)
		}
	}
	for _, k := range keys {
		delete(f.data, string(k))
	}
	return nil
}

func (f *fakeEngine) GetEntries(prefix []byte) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: []byte(k), Value: f.data[k]})
	}
	return entries, nil
}

func (f *fakeEngine) Sync([]string, SyncMode, func(map[string]SyncStatus)) error { return nil }

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func TestDeleteBatchStopsAtFirstFailure(t *testing.T) {
	eng := newFakeEngine()
	s := newRuntimeStore("drag", eng, tlv.Codec{}, log.NewNopLogger())

	keys := []unified.Key{
		{Intention: unified.IntentionDrag, BundleName: "com.example.app", GroupID: "a"},
		{Intention: unified.IntentionDrag, BundleName: "com.example.app", GroupID: "b"},
		{Intention: unified.IntentionDrag, BundleName: "com.example.app", GroupID: "c"},
	}
	for _, k := range keys {
		if err := s.Put(newTestData(k, plainText("x"))); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}
	eng.deleteErrOn = keys[1].String()

	err := s.DeleteBatch([]string{keys[0].String(), keys[1].String(), keys[2].String()})
	if !errors.Is(err, ErrStore) {
		t.Fatalf("DeleteBatch = %v, want ErrStore", err)
	}
	if eng.has(keys[0].String()) {
		t.Fatalf("first key should be deleted before the failure")
	}
	if !eng.has(keys[1].String()) {
		t.Fatalf("failing key should remain")
	}
	if !eng.has(keys[2].String()) {
		t.Fatalf("keys after the failure should not be attempted")
	}
}

func TestPutEngineFailure(t *testing.T) {
	eng := newFakeEngine()
	eng.putErr = errors.New("disk full")
	s := newRuntimeStore("drag", eng, tlv.Codec{}, log.NewNopLogger())

	key := unified.NewKey(unified.IntentionDrag, "com.example.app")
	if err := s.Put(newTestData(key, plainText("x"))); !errors.Is(err, ErrStore) {
		t.Fatalf("Put with failing engine = %v, want ErrStore", err)
	}
}
