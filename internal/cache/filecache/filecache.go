package filecache

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chizhikfront/internal/cache"
)

// Store keeps one JSON file per key under Dir, the local analogue of a
// browser's localStorage. All failures degrade to a miss.
type Store struct {
	Dir string
	Log *slog.Logger

	// Now is injectable for expiry tests.
	Now func() time.Time
}

func New(dir string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{Dir: dir, Log: log, Now: time.Now}
}

func (s *Store) Get(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	if err := ctx.Err(); err != nil {
		return nil, false
	}

	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}

	var e cache.Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, false
	}
	if e.Expired(s.now(), ttl) {
		return nil, false
	}
	return e.D, true
}

func (s *Store) Set(ctx context.Context, key string, payload any) {
	if err := ctx.Err(); err != nil {
		return
	}

	d, err := json.Marshal(payload)
	if err != nil {
		s.Log.Warn("cache marshal failed", "key", key, "err", err)
		return
	}

	b, err := json.Marshal(cache.Entry{T: s.now().UnixMilli(), D: d})
	if err != nil {
		return
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		s.Log.Warn("cache dir failed", "dir", s.Dir, "err", err)
		return
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		s.Log.Warn("cache write failed", "key", key, "err", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		s.Log.Warn("cache rename failed", "key", key, "err", err)
	}
}

func (s *Store) Delete(ctx context.Context, key string) {
	_ = os.Remove(s.path(key))
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Dir, sanitize(key)+".json")
}

// sanitize maps cache keys like "tree:<uuid>" onto portable file names.
func sanitize(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
