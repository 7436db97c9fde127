// Package query is an in-memory cache for remote reads. Entries are keyed by
// resource identity, served fresh for a stale window, revalidated in the
// background after it, deduplicated while in flight and refetched when a
// mutation invalidates them.
package query

import (
	"net/url"
	"strings"
)

// Key identifies a cache entry as ordered segments, most general first, so a
// shorter key acts as a prefix for every entry below it.
type Key []string

func NewKey(segments ...string) Key {
	key := make(Key, len(segments))
	copy(key, segments)
	return key
}

// Append returns a new key with extra segments.
func (key Key) Append(segments ...string) Key {
	out := make(Key, 0, len(key)+len(segments))
	out = append(out, key...)
	return append(out, segments...)
}

func (key Key) String() string {
	escaped := make([]string, len(key))
	for i, segment := range key {
		escaped[i] = url.PathEscape(segment)
	}
	return strings.Join(escaped, "/")
}

func (key Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(key) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Params renders query parameters as a single key segment. Encoding sorts by
// name, so equal parameter sets give equal segments and any difference gives
// a different one.
func Params(values url.Values) string {
	return values.Encode()
}
