package store

import (
	"bytes"
	"testing"
)

func TestRecordKey(t *testing.T) {
	got := recordKey("udmf://drag/com.example.app/g1", "r1")
	want := []byte("udmf://drag/com.example.app/g1/r1")
	if !bytes.Equal(got, want) {
		t.Fatalf("recordKey = %q, want %q", got, want)
	}
}

func TestIsRuntimeEntry(t *testing.T) {
	key := "udmf://drag/com.example.app/g1"
	if !isRuntimeEntry([]byte(key), key) {
		t.Fatalf("exact match should be the runtime entry")
	}
	if isRuntimeEntry([]byte(key+"/r1"), key) {
		t.Fatalf("record entry mistaken for runtime entry")
	}
	if isRuntimeEntry([]byte(key+"2"), key) {
		t.Fatalf("sibling id mistaken for runtime entry")
	}
}

func TestIsRecordEntry(t *testing.T) {
	key := "udmf://drag/com.example.app/g1"
	if !isRecordEntry([]byte(key+"/r1"), key) {
		t.Fatalf("separator-aligned key should be a record entry")
	}
	// g12 shares the string prefix g1 but belongs to another object.
	if isRecordEntry([]byte(key+"2"), key) {
		t.Fatalf("sibling object key mistaken for record entry")
	}
	if isRecordEntry([]byte(key+"2/r1"), key) {
		t.Fatalf("sibling record entry mistaken for record entry")
	}
	if isRecordEntry([]byte(key), key) {
		t.Fatalf("runtime entry mistaken for record entry")
	}
}

func TestIsObjectKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"udmf://drag/com.example.app/g1", true},
		{"udmf://drag/com.example.app/g1/r1", false},
		{"udmf://drag/com.example.app", false},
		{DataPrefix, false},
	}
	for _, tc := range cases {
		if got := isObjectKey([]byte(tc.key)); got != tc.want {
			t.Errorf("isObjectKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}
