package testsupport

import (
	"path/filepath"
	"testing"

	"mediacat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TrashDir = filepath.Join(base, "trash")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBatchSize overrides the reconcile batch size on the test config.
func WithBatchSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reconcile.BatchSize = size
	}
}

// WithDedupeStrategy sets the dedupe tie-break strategy on the test config.
func WithDedupeStrategy(strategy string, folderPriority ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dedupe.Strategy = strategy
		b.cfg.Dedupe.FolderPriority = folderPriority
	}
}

// WithMinFileSize sets the scanner minimum file size on the test config.
func WithMinFileSize(size int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scanner.MinFileSize = size
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
