// Package testsupport provides builders shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"metacache/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with a unique temp cache path per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	cfgVal.Cache.Path = filepath.Join(t.TempDir(), "metadata_cache.json")
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCachePath overrides the cache file location on the test config.
func WithCachePath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Path = path
	}
}

// WithCacheDisabled disables the cache on the test config.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithTTLDays overrides the cache TTL on the test config.
func WithTTLDays(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.TTLDays = days
	}
}

// WriteConfig marshals the config to a TOML file under a temp directory and
// returns its path, for commands exercised through --config.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal test config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}
