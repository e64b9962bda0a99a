package unified

import (
	"fmt"
	"strings"

	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/id"
)

// Scheme prefixes every unified key. All persisted entries of a store
// live under this prefix.
const Scheme = "udmf://"

// Key identifies one unified data object:
//
//	udmf://{intention}/{bundleName}/{groupID}
//
// The full key string carries exactly four '/' separators; record entry
// keys append "/{uid}" and therefore carry five.
type Key struct {
	Intention  string
	BundleName string
	GroupID    string
}

// NewKey mints a Key with a fresh group segment.
func NewKey(intention, bundleName string) Key {
	return Key{Intention: intention, BundleName: bundleName, GroupID: id.NextString()}
}

// ParseKey validates and splits a full unified key string.
func ParseKey(s string) (Key, error) {
	if !strings.HasPrefix(s, Scheme) {
		return Key{}, fmt.Errorf("unified key %q: missing %q prefix", s, Scheme)
	}
	parts := strings.Split(s[len(Scheme):], "/")
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("unified key %q: want intention/bundle/group", s)
	}
	for _, p := range parts {
		if p == "" {
			return Key{}, fmt.Errorf("unified key %q: empty segment", s)
		}
	}
	return Key{Intention: parts[0], BundleName: parts[1], GroupID: parts[2]}, nil
}

// String returns the full key string.
func (k Key) String() string {
	return Scheme + k.Intention + "/" + k.BundleName + "/" + k.GroupID
}

// IsValid reports whether all segments are present.
func (k Key) IsValid() bool {
	return k.Intention != "" && k.BundleName != "" && k.GroupID != ""
}
