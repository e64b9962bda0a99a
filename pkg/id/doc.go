// Package id generates monotonically increasing, lexicographically
// sortable identifiers used for unified-key group segments and record
// uids.
package id
