package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is a best-effort TTL key/value store. Get treats absent, expired
// and malformed entries identically (miss); Set never reports failure,
// a cache that cannot persist degrades to always-miss.
type Store interface {
	Get(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool)
	Set(ctx context.Context, key string, payload any)
	Delete(ctx context.Context, key string)
}

// MaxTTL is the hygiene ceiling for entries that have no natural expiry
// (the selected city persists until replaced).
const MaxTTL = 365 * 24 * time.Hour

// Entry is the stored envelope: validity is now-T <= ttl.
type Entry struct {
	T int64           `json:"t"` // unix milliseconds
	D json.RawMessage `json:"d"`
}

func (e Entry) Expired(now time.Time, ttl time.Duration) bool {
	if e.D == nil {
		return true
	}
	age := now.Sub(time.UnixMilli(e.T))
	return age < 0 || age > ttl
}

// GetJSON reads a cached value into out. A decode failure is a miss, not
// an error.
func GetJSON(ctx context.Context, s Store, key string, ttl time.Duration, out any) bool {
	raw, ok := s.Get(ctx, key, ttl)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
