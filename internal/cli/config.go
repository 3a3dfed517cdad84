package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/plangraph/pkg/cache"
	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/pipeline"
)

// defaultAddr is the listen address of "plangraph serve".
const defaultAddr = ":8080"

// Config holds user defaults read from config.toml.
//
//	serialize = true
//	heuristics = ["setlevel"]
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Serialize     bool     `toml:"serialize"`
	IgnoreMutexes bool     `toml:"ignore_mutexes"`
	MaxLevels     int      `toml:"max_levels"`
	Workers       int      `toml:"workers"`
	Heuristics    []string `toml:"heuristics"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	TTL           string `toml:"ttl"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Serialize: true,
		Cache:     CacheConfig{Backend: cache.BackendFile, RedisPrefix: appName + ":"},
		Server:    ServerConfig{Addr: defaultAddr},
	}
}

// LoadConfig reads path on top of [DefaultConfig]. An empty path reads the
// default location, where a missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "cache ttl")
		}
	}
	opts := c.pipelineOptions()
	return opts.ValidateAndSetDefaults()
}

// pipelineOptions converts the file defaults to evaluation options.
func (c Config) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Parallel:      !c.Serialize,
		IgnoreMutexes: c.IgnoreMutexes,
		MaxLevels:     c.MaxLevels,
		Workers:       c.Workers,
		Heuristics:    append([]string(nil), c.Heuristics...),
	}
}

func (c CacheConfig) ttl() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0
	}
	return d
}

func (c CacheConfig) cacheConfig() cache.Config {
	return cache.Config{
		Backend: c.Backend,
		Dir:     c.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
	}
}
