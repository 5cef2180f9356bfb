package rediscache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"chizhikfront/internal/cache"
)

const keyPrefix = "chizhikfront:"

// Store keeps the same {t, d} envelope as the file backend so the caller
// TTL is still checked at read time; the server-side expiry is only a
// hygiene sweep for abandoned keys.
type Store struct {
	client *redis.Client
	log    *slog.Logger
	now    func() time.Time
}

func New(addr string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &Store{client: client, log: log, now: time.Now}, nil
}

func (s *Store) Get(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	b, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.log.Warn("redis get failed", "key", key, "err", err)
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
	d, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("cache marshal failed", "key", key, "err", err)
		return
	}
	b, err := json.Marshal(cache.Entry{T: s.now().UnixMilli(), D: d})
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, keyPrefix+key, b, cache.MaxTTL).Err(); err != nil {
		s.log.Warn("redis set failed", "key", key, "err", err)
	}
}

func (s *Store) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil && err != redis.Nil {
		s.log.Warn("redis del failed", "key", key, "err", err)
	}
}
