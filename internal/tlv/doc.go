// Package tlv implements the entry codec for unified data: runtime
// metadata and records are marshalled as tagged TLV field sequences
// (tag 2B BE | length 4B BE | value) with a crc32c trailer. The runtime
// store treats these buffers as opaque values.
package tlv
