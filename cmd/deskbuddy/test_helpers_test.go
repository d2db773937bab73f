package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"deskbuddy/internal/preflight"
	"deskbuddy/internal/status"
)

type cliTestEnv struct {
	root        string
	configPath  string
	interpreter string
	launchLog   string
}

// setupCLITestEnv writes a config rooted in a temp dir whose interpreter is a
// stub that appends its arguments to launchLog.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	root := filepath.Join(base, "project")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}

	env := &cliTestEnv{
		root:       root,
		configPath: filepath.Join(base, "deskbuddy.toml"),
		launchLog:  filepath.Join(base, "launches.log"),
	}
	env.interpreter = filepath.Join(base, "bin", "python-stub")
	if err := os.MkdirAll(filepath.Dir(env.interpreter), 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" >> %q\nexit 0\n", env.launchLog)
	if err := os.WriteFile(env.interpreter, []byte(script), 0o755); err != nil {
		t.Fatalf("write interpreter stub: %v", err)
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
root = %q

[python]
interpreter = %q
required_modules = ["streamlit", "pandas", "plotly"]

[startup]
delay_seconds = 0
stop_grace_seconds = 1

[logging]
level = "error"
`, env.root, env.interpreter)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// withMissing makes the named capabilities unresolvable.
func withMissing(names ...string) func(*commandContext) {
	missing := make(map[string]bool, len(names))
	for _, name := range names {
		missing[name] = true
	}
	return func(c *commandContext) {
		c.resolver = preflight.ResolverFunc(func(_ context.Context, name string) error {
			if missing[name] {
				return preflight.ErrModuleNotFound
			}
			return nil
		})
	}
}

func withProcesses(procs ...status.ProcessDescriptor) func(*commandContext) {
	return func(c *commandContext) {
		c.enumerator = status.EnumeratorFunc(func(context.Context) ([]status.ProcessDescriptor, error) {
			return procs, nil
		})
	}
}

// syncBuffer lets the test read output while a background collector may
// still be writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runCLI(t *testing.T, env *cliTestEnv, args []string, opts ...func(*commandContext)) (string, string, error) {
	t.Helper()
	var cmdCtx *commandContext
	cmd := newRootCommandWith(func(c *commandContext) {
		cmdCtx = c
		for _, opt := range opts {
			opt(c)
		}
	})
	var stdout, stderr syncBuffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()

	// --start leaves the collector running; let it finish before reading.
	if cmdCtx != nil && cmdCtx.collector != nil {
		select {
		case <-cmdCtx.collector.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("background collector did not finish")
		}
	}
	return stdout.String(), stderr.String(), err
}

func readLaunchLog(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	data, err := os.ReadFile(env.launchLog)
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("read launch log: %v", err)
	}
	return string(data)
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
