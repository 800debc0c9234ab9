package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"usher/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SubtitleDir = filepath.Join(base, "subtitles")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.LLM.APIKey = "test"

	libraryRoot := filepath.Join(base, "library")
	if err := os.MkdirAll(libraryRoot, 0o755); err != nil {
		t.Fatalf("mkdir library root: %v", err)
	}
	cfgVal.Library.Roots = []string{libraryRoot}

	builder := &configBuilder{cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLibraryRoots overrides the scanned media roots on the test config.
func WithLibraryRoots(roots ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.Roots = roots
	}
}

// WithAPIToken sets a bearer token requirement on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

