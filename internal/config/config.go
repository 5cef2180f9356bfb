package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type CacheConfig struct {
	Backend   string `yaml:"backend"` // file|redis
	Dir       string `yaml:"dir"`
	RedisAddr string `yaml:"redis_addr"`

	TreeTTLHours     int `yaml:"tree_ttl_hours"`
	OffersTTLMinutes int `yaml:"offers_ttl_minutes"`
}

type Root struct {
	Env   string      `yaml:"env"`
	Cache CacheConfig `yaml:"cache"`
	Local Config      `yaml:"local"`
	Dev   Config      `yaml:"dev"`
	Prod  Config      `yaml:"prod"`
}

type Config struct {
	Env string `yaml:"-"`

	Log struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"add_source"`
	} `yaml:"log"`

	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Chizhik struct {
		BaseURL         string `yaml:"base_url"`
		Prefix          string `yaml:"prefix"`
		DefaultCityID   string `yaml:"default_city_id"`
		DefaultCityName string `yaml:"default_city_name"`
	} `yaml:"chizhik"`

	CLI struct {
		City       string `yaml:"city"` // name or UUID
		OutputFile string `yaml:"output_file"`
	} `yaml:"cli"`

	Pagination struct {
		PageSize int `yaml:"page_size"`
		MaxPages int `yaml:"max_pages"`
	} `yaml:"pagination"`

	HTTP struct {
		TimeoutSeconds       int `yaml:"timeout_seconds"`
		SearchTimeoutSeconds int `yaml:"search_timeout_seconds"`
		Retries              int `yaml:"retries"`
		SearchRetries        int `yaml:"search_retries"`
		BackoffBaseMillis    int `yaml:"backoff_base_millis"`
		BackoffStepMillis    int `yaml:"backoff_step_millis"`
		BackoffMaxMillis     int `yaml:"backoff_max_millis"`
	} `yaml:"http"`

	Cache CacheConfig `yaml:"cache"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var root Root
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, err
	}

	env := strings.TrimSpace(strings.ToLower(root.Env))
	if env == "" {
		env = "local"
	}

	var p Config
	switch env {
	case "local":
		p = root.Local
	case "dev":
		p = root.Dev
	case "prod":
		p = root.Prod
	default:
		return nil, fmt.Errorf("unknown env=%q (expected local|dev|prod)", env)
	}
	p.Env = env

	if isCacheEmpty(p.Cache) && !isCacheEmpty(root.Cache) {
		p.Cache = root.Cache
	}

	applyDefaults(&p)
	return &p, nil
}

func (c *Config) TreeTTL() time.Duration {
	return time.Duration(c.Cache.TreeTTLHours) * time.Hour
}

func (c *Config) OffersTTL() time.Duration {
	return time.Duration(c.Cache.OffersTTLMinutes) * time.Minute
}

func isCacheEmpty(cc CacheConfig) bool {
	return strings.TrimSpace(cc.Backend) == "" && strings.TrimSpace(cc.Dir) == "" && strings.TrimSpace(cc.RedisAddr) == ""
}

func applyDefaults(p *Config) {
	if p.Chizhik.BaseURL == "" {
		p.Chizhik.BaseURL = "https://feefomit-chizhick-deb9.twc1.net"
	}
	if p.Chizhik.Prefix == "" {
		p.Chizhik.Prefix = "/api"
	}
	if p.Chizhik.DefaultCityID == "" {
		// Москва
		p.Chizhik.DefaultCityID = "0c5b2444-70a0-4932-980c-b4dc0d3f02b5"
		p.Chizhik.DefaultCityName = "Москва"
	}

	if p.Server.Host == "" {
		p.Server.Host = "0.0.0.0"
	}
	if p.Server.Port == 0 {
		p.Server.Port = 7892
	}

	if p.Pagination.PageSize <= 0 {
		p.Pagination.PageSize = 24
	}
	if p.Pagination.MaxPages <= 0 {
		p.Pagination.MaxPages = 500
	}

	if p.HTTP.TimeoutSeconds <= 0 {
		p.HTTP.TimeoutSeconds = 30
	}
	if p.HTTP.SearchTimeoutSeconds <= 0 {
		p.HTTP.SearchTimeoutSeconds = 10
	}
	// бекенд может отдавать 202/503 пока строит дерево, поэтому ретраев много
	if p.HTTP.Retries <= 0 {
		p.HTTP.Retries = 20
	}
	if p.HTTP.SearchRetries <= 0 {
		p.HTTP.SearchRetries = 10
	}
	if p.HTTP.BackoffBaseMillis <= 0 {
		p.HTTP.BackoffBaseMillis = 800
	}
	if p.HTTP.BackoffStepMillis <= 0 {
		p.HTTP.BackoffStepMillis = 100
	}
	if p.HTTP.BackoffMaxMillis <= 0 {
		p.HTTP.BackoffMaxMillis = 2500
	}

	p.Cache.Backend = strings.ToLower(strings.TrimSpace(p.Cache.Backend))
	if p.Cache.Backend == "" {
		p.Cache.Backend = "file"
	}
	if p.Cache.Dir == "" {
		p.Cache.Dir = "./cache"
	}
	if p.Cache.TreeTTLHours <= 0 {
		p.Cache.TreeTTLHours = 12
	}
	if p.Cache.OffersTTLMinutes <= 0 {
		p.Cache.OffersTTLMinutes = 10
	}

	if p.Log.Level == "" {
		if p.Env == "prod" {
			p.Log.Level = "info"
		} else {
			p.Log.Level = "debug"
		}
	}
	if p.Log.Format == "" {
		if p.Env == "prod" {
			p.Log.Format = "json"
		} else {
			p.Log.Format = "text"
		}
	}
}
