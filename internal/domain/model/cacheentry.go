package model

import (
	"encoding/json"
	"time"
)

// CacheEntry is one persisted upstream response. Key is already case-folded
// and namespaced as "<source>_<title>".
type CacheEntry struct {
	Key       string
	Value     json.RawMessage
	WrittenAt time.Time
}

// FreshAt reports whether the entry is still within ttl at the given instant.
func (e CacheEntry) FreshAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.WrittenAt) < ttl
}
