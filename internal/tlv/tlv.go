package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"sort"
)

// Entries are sequences of tagged fields framed as
// tag(2B BE) | length(4B BE) | value, with a crc32c trailer over all
// field bytes. Decoding verifies the checksum before any field is read.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// ErrMalformed reports a truncated, corrupted, or unparseable entry.
var ErrMalformed = errors.New("tlv: malformed entry")

const fieldHeaderLen = 6

type writer struct {
	buf []byte
}

func (w *writer) field(tag uint16, val []byte) {
	var hdr [fieldHeaderLen]byte
	binary.BigEndian.PutUint16(hdr[0:2], tag)
	binary.BigEndian.PutUint32(hdr[2:6], uint32(len(val)))
	w.buf = append(w.buf, hdr[:]...)
	w.buf = append(w.buf, val...)
}

func (w *writer) str(tag uint16, s string) {
	w.field(tag, []byte(s))
}

func (w *writer) boolean(tag uint16, v bool) {
	b := byte(0)
	if v {
		b = 1
	}
	w.field(tag, []byte{b})
}

func (w *writer) i32(tag uint16, v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.field(tag, b[:])
}

func (w *writer) u32(tag uint16, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.field(tag, b[:])
}

func (w *writer) i64(tag uint16, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.field(tag, b[:])
}

// finish appends the crc32c trailer and returns the framed entry.
func (w *writer) finish() []byte {
	crc := crc32.Checksum(w.buf, castagnoli)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], crc)
	return append(w.buf, b[:]...)
}

// parseFields verifies the trailer and splits the entry into its fields.
// A repeated tag keeps the last occurrence.
func parseFields(b []byte) (map[uint16][]byte, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: short entry (%d bytes)", ErrMalformed, len(b))
	}
	body, trailer := b[:len(b)-4], b[len(b)-4:]
	if crc32.Checksum(body, castagnoli) != binary.BigEndian.Uint32(trailer) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrMalformed)
	}
	fields := map[uint16][]byte{}
	for len(body) > 0 {
		if len(body) < fieldHeaderLen {
			return nil, fmt.Errorf("%w: truncated field header", ErrMalformed)
		}
		tag := binary.BigEndian.Uint16(body[0:2])
		ln := int(binary.BigEndian.Uint32(body[2:6]))
		body = body[fieldHeaderLen:]
		if ln > len(body) {
			return nil, fmt.Errorf("%w: field %d overruns entry", ErrMalformed, tag)
		}
		fields[tag] = body[:ln]
		body = body[ln:]
	}
	return fields, nil
}

func getStr(m map[uint16][]byte, tag uint16) string {
	return string(m[tag])
}

func getBool(m map[uint16][]byte, tag uint16) bool {
	v := m[tag]
	return len(v) == 1 && v[0] == 1
}

func getI32(m map[uint16][]byte, tag uint16) (int32, error) {
	v, ok := m[tag]
	if !ok {
		return 0, nil
	}
	if len(v) != 4 {
		return 0, fmt.Errorf("%w: field %d: want 4 bytes, got %d", ErrMalformed, tag, len(v))
	}
	return int32(binary.BigEndian.Uint32(v)), nil
}

func getU32(m map[uint16][]byte, tag uint16) (uint32, error) {
	v, ok := m[tag]
	if !ok {
		return 0, nil
	}
	if len(v) != 4 {
		return 0, fmt.Errorf("%w: field %d: want 4 bytes, got %d", ErrMalformed, tag, len(v))
	}
	return binary.BigEndian.Uint32(v), nil
}

func getI64(m map[uint16][]byte, tag uint16) (int64, error) {
	v, ok := m[tag]
	if !ok {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("%w: field %d: want 8 bytes, got %d", ErrMalformed, tag, len(v))
	}
	return int64(binary.BigEndian.Uint64(v)), nil
}

// Details are encoded as a nested field sequence of alternating
// key/value string fields, sorted by key for deterministic output.

const (
	tagDetailKey uint16 = 1
	tagDetailVal uint16 = 2
)

func encodeDetails(d map[string]string) []byte {
	if len(d) == 0 {
		return nil
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var w writer
	for _, k := range keys {
		w.str(tagDetailKey, k)
		w.str(tagDetailVal, d[k])
	}
	return w.buf
}

func decodeDetails(b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	d := map[string]string{}
	var key string
	var haveKey bool
	for len(b) > 0 {
		if len(b) < fieldHeaderLen {
			return nil, fmt.Errorf("%w: truncated details", ErrMalformed)
		}
		tag := binary.BigEndian.Uint16(b[0:2])
		ln := int(binary.BigEndian.Uint32(b[2:6]))
		b = b[fieldHeaderLen:]
		if ln > len(b) {
			return nil, fmt.Errorf("%w: details field overrun", ErrMalformed)
		}
		val := string(b[:ln])
		b = b[ln:]
		switch tag {
		case tagDetailKey:
			key, haveKey = val, true
		case tagDetailVal:
			if !haveKey {
				return nil, fmt.Errorf("%w: details value without key", ErrMalformed)
			}
			d[key] = val
			haveKey = false
		default:
			return nil, fmt.Errorf("%w: unexpected details tag %d", ErrMalformed, tag)
		}
	}
	return d, nil
}
