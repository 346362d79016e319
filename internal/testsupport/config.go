package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"foildb/internal/config"
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
	cfgVal.Paths.ArtefactsDir = filepath.Join(base, "artefacts")
	cfgVal.Paths.ExportDir = filepath.Join(base, "offline_db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

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

// WithLocale overrides the configured locale.
func WithLocale(locale string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Titles.Locale = locale
	}
}

// WithSyncMode overrides the configured sync mode.
func WithSyncMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.Mode = mode
	}
}

// WithExportEnabled toggles the export stage on the test config.
func WithExportEnabled(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.Enabled = enabled
	}
}

// WithStubbedTool writes a stub extraction tool onto PATH that emits the
// provided document to whatever --output path it is invoked with.
func WithStubbedTool(document string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := fmt.Sprintf(`#!/bin/sh
while [ "$#" -gt 0 ]; do
  case "$1" in
    --output)
      shift
      cat > "$1" <<'STUBDOC'
%s
STUBDOC
      ;;
  esac
  shift
done
exit 0
`, document)
		target := filepath.Join(binDir, b.cfg.Titles.Tool)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub %s: %v", b.cfg.Titles.Tool, err)
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ArtefactsDir)
}
