package gateway

import (
	"fmt"
	"net/url"
	"time"
)

// Config controls the gateway transport and retry policy.
type Config struct {
	// BaseURL is the API root, for example http://localhost:8080/api.
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	MaxRetries        int           `yaml:"max_retries"`
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay"`
	RetryMultiplier   float64       `yaml:"retry_multiplier"`
	RetryMaxDelay     time.Duration `yaml:"retry_max_delay"`
}

// DefaultConfig mirrors the web client: three retries starting at one second
// and doubling.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "http://localhost:8080/api",
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryInitialDelay: time.Second,
		RetryMultiplier:   2,
		RetryMaxDelay:     8 * time.Second,
	}
}

// Validate rejects unusable values.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an absolute url", ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0", ErrInvalidConfig)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("%w: max_retries must be in [0,10]", ErrInvalidConfig)
	}
	if c.MaxRetries > 0 {
		if c.RetryInitialDelay <= 0 {
			return fmt.Errorf("%w: retry_initial_delay must be > 0", ErrInvalidConfig)
		}
		if c.RetryMultiplier < 1 {
			return fmt.Errorf("%w: retry_multiplier must be >= 1", ErrInvalidConfig)
		}
		if c.RetryMaxDelay < c.RetryInitialDelay {
			return fmt.Errorf("%w: retry_max_delay must be >= retry_initial_delay", ErrInvalidConfig)
		}
	}
	return nil
}
