package unified

import (
	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/id"
)

// Runtime is the per-object bookkeeping record. Exactly one exists per
// unified data object, stored under the object key itself.
type Runtime struct {
	Key              Key
	IsPrivate        bool
	CreateTime       int64 // ms since epoch
	LastModifiedTime int64 // ms since epoch
	CreatePackage    string
	SourcePackage    string
	DeviceID         string
	RecordTotalNum   uint32
}

// Data is one unified data object: runtime metadata plus an ordered
// sequence of records. Instances are plain values; the store never
// retains them across calls.
type Data struct {
	Runtime *Runtime
	Records []Record
}

// NewData returns an empty object.
func NewData() *Data { return &Data{} }

// AddRecord appends a record, minting a uid when the record has none.
func (d *Data) AddRecord(r Record) {
	if r == nil {
		return
	}
	if r.UID() == "" {
		r.SetUID(id.NextString())
	}
	d.Records = append(d.Records, r)
}

// Empty reports whether the object has neither runtime nor records.
func (d *Data) Empty() bool {
	return d == nil || (d.Runtime == nil && len(d.Records) == 0)
}

// Size returns the total byte size across all records.
func (d *Data) Size() int64 {
	var n int64
	for _, r := range d.Records {
		if r != nil {
			n += r.Size()
		}
	}
	return n
}

// Summary aggregates record byte sizes by type category. Derived on
// demand, never persisted. Categories with no records are absent.
type Summary struct {
	Summary   map[string]int64
	TotalSize int64
}

// Summarize computes the summary of the object's records.
func (d *Data) Summarize() Summary {
	s := Summary{Summary: map[string]int64{}}
	if d == nil {
		return s
	}
	for _, r := range d.Records {
		if r == nil {
			continue
		}
		size := r.Size()
		s.Summary[r.Type().Category()] += size
		s.TotalSize += size
	}
	return s
}
