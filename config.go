package blogClient

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/blogClient/gateway"
	"github.com/MrEthical07/blogClient/session"
	"gopkg.in/yaml.v3"
)

// Config is the complete client configuration.
type Config struct {
	Gateway gateway.Config `yaml:"gateway"`
	Session session.Config `yaml:"session"`
	Storage StorageConfig  `yaml:"storage"`
	Events  EventsConfig   `yaml:"events"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Log     LogConfig      `yaml:"log"`
}

// StorageKind selects the durable credential backend.
type StorageKind string

const (
	StorageMemory StorageKind = "memory"
	StorageFile   StorageKind = "file"
	StorageBolt   StorageKind = "bolt"
	StorageRedis  StorageKind = "redis"
)

// StorageConfig configures the backend Build opens when no Storage is
// injected.
type StorageConfig struct {
	Kind StorageKind `yaml:"kind"`
	// Path is the file or bolt database path.
	Path string `yaml:"path"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`
}

// EventsConfig controls event delivery. With Async set, events go through a
// buffered dispatcher.
type EventsConfig struct {
	Async      bool `yaml:"async"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig defines in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// LogConfig is consumed by NewLogger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Timestamps bool   `yaml:"timestamps"`
}

// DefaultConfig returns a configuration for a backend on localhost:8080.
func DefaultConfig() Config {
	return Config{
		Gateway: gateway.DefaultConfig(),
		Session: session.DefaultConfig(),
		Storage: StorageConfig{
			Kind:        StorageMemory,
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "blog",
		},
		Events: EventsConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "default",
		},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Gateway.Validate(); err != nil {
		return err
	}

	if c.Session.LoginPath == "" || c.Session.ValidatePath == "" || c.Session.ProfilePath == "" {
		return fmt.Errorf("%w: session login, validate and profile paths are required", ErrInvalidConfig)
	}
	if c.Session.ExpiryLeeway < 0 {
		return fmt.Errorf("%w: session expiry_leeway must be >= 0", ErrInvalidConfig)
	}

	switch c.Storage.Kind {
	case StorageMemory:
	case StorageFile, StorageBolt:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("%w: storage path required for %s", ErrInvalidConfig, c.Storage.Kind)
		}
	case StorageRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return fmt.Errorf("%w: storage redis_addr required", ErrInvalidConfig)
		}
		if c.Storage.RedisTTL < 0 {
			return fmt.Errorf("%w: storage redis_ttl must be >= 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage kind %q", ErrInvalidConfig, c.Storage.Kind)
	}

	if c.Events.Async && c.Events.BufferSize <= 0 {
		return fmt.Errorf("%w: events buffer_size must be > 0 when async", ErrInvalidConfig)
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return fmt.Errorf("%w: latency histograms require metrics", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown fields are
// rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays BLOG_* variables read through lookup (os.LookupEnv when
// nil). Malformed values are errors.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := envReader{lookup: lookup}

	env.str("BLOG_BASE_URL", &cfg.Gateway.BaseURL)
	env.dur("BLOG_TIMEOUT", &cfg.Gateway.Timeout)
	env.num("BLOG_MAX_RETRIES", &cfg.Gateway.MaxRetries)
	env.dur("BLOG_RETRY_DELAY", &cfg.Gateway.RetryInitialDelay)
	env.str("BLOG_ASSET_BASE_URL", &cfg.Session.AssetBaseURL)
	env.flag("BLOG_LOCAL_EXPIRY_CHECK", &cfg.Session.LocalExpiryCheck)

	var kind string
	if env.str("BLOG_STORAGE", &kind) {
		cfg.Storage.Kind = StorageKind(strings.ToLower(kind))
	}
	env.str("BLOG_STORAGE_PATH", &cfg.Storage.Path)
	env.str("BLOG_REDIS_ADDR", &cfg.Storage.RedisAddr)
	env.str("BLOG_REDIS_PASSWORD", &cfg.Storage.RedisPassword)
	env.num("BLOG_REDIS_DB", &cfg.Storage.RedisDB)
	env.str("BLOG_REDIS_PREFIX", &cfg.Storage.RedisPrefix)

	env.flag("BLOG_METRICS", &cfg.Metrics.Enabled)
	env.str("BLOG_LOG_LEVEL", &cfg.Log.Level)
	env.str("BLOG_LOG_FORMAT", &cfg.Log.Format)

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) str(key string, dst *string) bool {
	v, ok := e.raw(key)
	if ok {
		*dst = v
	}
	return ok
}

func (e *envReader) flag(key string, dst *bool) {
	v, ok := e.raw(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

func (e *envReader) num(key string, dst *int) {
	v, ok := e.raw(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid non-negative integer %q", key, v))
		return
	}
	*dst = n
}

func (e *envReader) dur(key string, dst *time.Duration) {
	v, ok := e.raw(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return
	}
	*dst = d
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
