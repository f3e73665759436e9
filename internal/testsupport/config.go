package testsupport

import (
	"path/filepath"
	"testing"

	"parley/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ScenarioDir = ""
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithAdminToken sets the staff bearer token on the test config.
func WithAdminToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Admin.Token = token
	}
}

// WithScenarioDir points the catalog at a directory of scenario files.
func WithScenarioDir(dir string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.ScenarioDir = dir
	}
}
