package bootstrap

import (
	"log/slog"
	"os"
	"time"

	"chizhikfront/internal/api/chizhik"
	"chizhikfront/internal/cache"
	"chizhikfront/internal/cache/filecache"
	"chizhikfront/internal/cache/rediscache"
	"chizhikfront/internal/client"
	"chizhikfront/internal/config"
)

// BuildAPI wires the two transport profiles into the backend client:
// a patient one for tree/products (the backend may answer 202/503 for a
// while when generating data) and a snappier one for city search.
func BuildAPI(cfg *config.Config, log *slog.Logger, workers int) (chizhik.ChizhikService, error) {
	slow, err := client.Build(client.Options{
		HTTPClient:  client.NewHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		MaxAttempts: cfg.HTTP.Retries,
		Workers:     workers,
		BaseDelay:   time.Duration(cfg.HTTP.BackoffBaseMillis) * time.Millisecond,
		StepDelay:   time.Duration(cfg.HTTP.BackoffStepMillis) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.HTTP.BackoffMaxMillis) * time.Millisecond,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	fast, err := client.Build(client.Options{
		HTTPClient:  client.NewHTTPClient(time.Duration(cfg.HTTP.SearchTimeoutSeconds) * time.Second),
		MaxAttempts: cfg.HTTP.SearchRetries,
		Workers:     workers,
		BaseDelay:   500 * time.Millisecond,
		StepDelay:   120 * time.Millisecond,
		MaxDelay:    time.Duration(cfg.HTTP.BackoffMaxMillis) * time.Millisecond,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	return chizhik.New(slow, fast, cfg.Chizhik.BaseURL, cfg.Chizhik.Prefix, log), nil
}

// BuildCache picks the cache backend. REDIS_ADDR in the environment
// overrides the config (the standard deployment knob).
func BuildCache(cfg *config.Config, log *slog.Logger) (cache.Store, error) {
	addr := cfg.Cache.RedisAddr
	if env := os.Getenv("REDIS_ADDR"); env != "" {
		addr = env
	}

	if cfg.Cache.Backend == "redis" || (cfg.Cache.Backend == "" && addr != "") {
		if addr == "" {
			addr = "localhost:6379"
		}
		store, err := rediscache.New(addr, log)
		if err != nil {
			return nil, err
		}
		log.Info("cache backend", "backend", "redis", "addr", addr)
		return store, nil
	}

	log.Info("cache backend", "backend", "file", "dir", cfg.Cache.Dir)
	return filecache.New(cfg.Cache.Dir, log), nil
}
