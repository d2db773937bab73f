package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"deskbuddy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config rooted in a unique temp directory.
// It defaults common fields and applies any provided options before
// normalization, so relative paths set by options resolve under the root.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Root = base
	cfgVal.Python.Interpreter = "python3"
	cfgVal.Startup.DelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	return builder.cfg
}

// WithInterpreter overrides the Python interpreter command.
func WithInterpreter(command string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Python.Interpreter = command
	}
}

// WithRequiredModules replaces the required module list.
func WithRequiredModules(modules ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Python.RequiredModules = append([]string(nil), modules...)
	}
}

// WithStartupDelay sets the collector-to-dashboard delay in seconds.
func WithStartupDelay(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Startup.DelaySeconds = seconds
	}
}

// WithStorePath points the SQLite store at a path relative to the root.
func WithStorePath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Path = path
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the configured interpreter is
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Python.Interpreter}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
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

// WriteScript writes an executable shell script under the test root and
// returns its path.
func WriteScript(t testing.TB, cfg *config.Config, name, body string) string {
	t.Helper()

	target := filepath.Join(BaseDir(cfg), "bin", name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", target, err)
	}
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.Root
}
