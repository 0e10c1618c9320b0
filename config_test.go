package blogClient

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "bolt with path",
			mutate:    func(c *Config) { c.Storage = StorageConfig{Kind: StorageBolt, Path: "/tmp/s.db"} },
			wantValid: true,
		},
		{
			name:      "file without path",
			mutate:    func(c *Config) { c.Storage.Kind = StorageFile },
			wantValid: false,
		},
		{
			name:      "redis without addr",
			mutate:    func(c *Config) { c.Storage = StorageConfig{Kind: StorageRedis} },
			wantValid: false,
		},
		{
			name:      "unknown storage",
			mutate:    func(c *Config) { c.Storage.Kind = "sqlite" },
			wantValid: false,
		},
		{
			name:      "negative retries",
			mutate:    func(c *Config) { c.Gateway.MaxRetries = -1 },
			wantValid: false,
		},
		{
			name:      "relative base url",
			mutate:    func(c *Config) { c.Gateway.BaseURL = "api" },
			wantValid: false,
		},
		{
			name:      "histograms without metrics",
			mutate:    func(c *Config) { c.Metrics = MetricsConfig{EnableLatencyHistograms: true} },
			wantValid: false,
		},
		{
			name:      "async events without buffer",
			mutate:    func(c *Config) { c.Events = EventsConfig{Async: true} },
			wantValid: false,
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Log.Level = "loud" },
			wantValid: false,
		},
		{
			name:      "missing validate path",
			mutate:    func(c *Config) { c.Session.ValidatePath = "" },
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
gateway:
  base_url: https://blog.example.com/api
  timeout: 5s
storage:
  kind: bolt
  path: /var/lib/blog/session.db
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.BaseURL != "https://blog.example.com/api" || cfg.Gateway.Timeout != 5*time.Second {
		t.Fatalf("gateway not loaded: %+v", cfg.Gateway)
	}
	if cfg.Gateway.MaxRetries != DefaultConfig().Gateway.MaxRetries {
		t.Fatalf("default retries lost: %d", cfg.Gateway.MaxRetries)
	}
	if cfg.Storage.Kind != StorageBolt || cfg.Session.ValidatePath != "/auth/validate-token" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if err = cfg.Validate(); err != nil {
		t.Fatalf("loaded config invalid: %v", err)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "gateway:\n  base_uri: http://x\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.BaseURL != DefaultConfig().Gateway.BaseURL {
		t.Fatalf("empty file changed defaults: %+v", cfg.Gateway)
	}
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"BLOG_BASE_URL":           "http://10.0.0.2:8080/api",
		"BLOG_TIMEOUT":            "12s",
		"BLOG_MAX_RETRIES":        "0",
		"BLOG_STORAGE":            "REDIS",
		"BLOG_REDIS_ADDR":         "redis:6379",
		"BLOG_REDIS_DB":           "2",
		"BLOG_LOCAL_EXPIRY_CHECK": "false",
		"BLOG_LOG_LEVEL":          "warn",
		"BLOG_REDIS_PREFIX":       "   ",
	}))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if cfg.Gateway.BaseURL != "http://10.0.0.2:8080/api" || cfg.Gateway.Timeout != 12*time.Second || cfg.Gateway.MaxRetries != 0 {
		t.Fatalf("gateway env not applied: %+v", cfg.Gateway)
	}
	if cfg.Storage.Kind != StorageRedis || cfg.Storage.RedisAddr != "redis:6379" || cfg.Storage.RedisDB != 2 {
		t.Fatalf("storage env not applied: %+v", cfg.Storage)
	}
	if cfg.Storage.RedisPrefix != "blog" {
		t.Fatalf("blank variable overrode prefix: %q", cfg.Storage.RedisPrefix)
	}
	if cfg.Session.LocalExpiryCheck || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestApplyEnvCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"BLOG_TIMEOUT":     "soon",
		"BLOG_MAX_RETRIES": "-3",
		"BLOG_METRICS":     "maybe",
	}))
	if err == nil {
		t.Fatal("expected errors")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 3 {
		t.Fatalf("expected three joined errors, got %v", err)
	}
	if cfg.Gateway.Timeout != DefaultConfig().Gateway.Timeout {
		t.Fatalf("malformed value applied: %v", cfg.Gateway.Timeout)
	}
}
