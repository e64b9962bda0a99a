package store

// Keyspace:
// - udmf://{intention}/{bundle}/{group}        (runtime entry, 4 slashes)
// - udmf://{intention}/{bundle}/{group}/{uid}  (record entries)
// - storemeta/{storeId}                        (store registry)
// - storemeta/#device                          (device identity)
//
// The runtime entry key is the object key itself; record keys append one
// "/{uid}" segment. A scanned key is the runtime entry iff it equals the
// object key byte-for-byte, and a top-level object key iff it carries
// exactly slashCountInKey separators.

const (
	// DataPrefix roots every unified data entry in a store.
	DataPrefix = "udmf://"

	// slashCountInKey is the separator count of a top-level object key.
	slashCountInKey = 4
)

const sep = byte('/')

// objectKey returns the engine key of the runtime entry.
func objectKey(key string) []byte {
	return []byte(key)
}

// recordKey returns the engine key of one record entry.
func recordKey(key, uid string) []byte {
	b := make([]byte, 0, len(key)+1+len(uid))
	b = append(b, key...)
	b = append(b, sep)
	b = append(b, uid...)
	return b
}

// isRuntimeEntry reports whether a scanned key denotes the runtime
// entry of the object identified by key (exact match, not mere prefix).
func isRuntimeEntry(scanned []byte, key string) bool {
	return string(scanned) == key
}

// isRecordEntry reports whether a scanned key denotes a record of the
// object identified by key: the byte after the object key must be a
// separator, so sibling ids sharing a plain string prefix (g1 vs g12)
// are never conflated.
func isRecordEntry(scanned []byte, key string) bool {
	return len(scanned) > len(key)+1 && scanned[len(key)] == sep
}

// countSeparators counts '/' bytes in a scanned key.
func countSeparators(k []byte) int {
	n := 0
	for _, c := range k {
		if c == sep {
			n++
		}
	}
	return n
}

// isObjectKey reports whether a scanned key denotes a top-level object.
func isObjectKey(k []byte) bool {
	return countSeparators(k) == slashCountInKey
}
