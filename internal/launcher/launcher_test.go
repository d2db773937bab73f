package launcher_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"deskbuddy/internal/components"
	"deskbuddy/internal/launcher"
)

func writeInterpreter(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "python")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write interpreter stub: %v", err)
	}
	return path
}

func newLauncher(t *testing.T, body string) (*launcher.Launcher, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, out bytes.Buffer
	return &launcher.Launcher{
		Interpreter: writeInterpreter(t, body),
		Dir:         t.TempDir(),
		Stdout:      &stdout,
		Stderr:      &stdout,
		Out:         &out,
		Grace:       2 * time.Second,
	}, &stdout, &out
}

func collector() components.Component {
	return components.Component{
		Name:      components.Collector,
		Label:     "Data Collection",
		Entry:     "src/data_collection/data_collector.py",
		Args:      []string{"src/data_collection/data_collector.py"},
		Signature: []string{"data_collector.py"},
	}
}

func TestLaunchPassesArgsAndWorkingDirectory(t *testing.T) {
	l, stdout, out := newLauncher(t, "pwd\necho \"$@\"\nexit 0\n")
	result := l.Launch(context.Background(), collector())

	if !result.OK() || result.Interrupted {
		t.Fatalf("expected clean exit, got %+v", result)
	}
	if result.ExitCode != 0 || result.PID == 0 || result.RunID == "" {
		t.Fatalf("unexpected result fields %+v", result)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 || lines[0] != l.Dir || lines[1] != "src/data_collection/data_collector.py" {
		t.Fatalf("unexpected child output %q", stdout.String())
	}
	if !strings.Contains(out.String(), "📊 Starting Data Collection...") {
		t.Fatalf("expected start line, got %q", out.String())
	}
}

func TestLaunchReportsNonZeroExit(t *testing.T) {
	l, _, out := newLauncher(t, "exit 7\n")
	result := l.Launch(context.Background(), collector())

	if result.OK() {
		t.Fatal("expected error for non-zero exit")
	}
	if result.Interrupted {
		t.Fatal("non-zero exit is not an interrupt")
	}
	if result.ExitCode != 7 {
		t.Fatalf("expected exit code 7, got %d", result.ExitCode)
	}
	if !strings.Contains(out.String(), "❌ Error starting data collection") {
		t.Fatalf("expected error line, got %q", out.String())
	}
}

func TestLaunchReportsSpawnFailure(t *testing.T) {
	var out bytes.Buffer
	l := &launcher.Launcher{Interpreter: filepath.Join(t.TempDir(), "missing-python"), Out: &out}
	result := l.Launch(context.Background(), collector())

	if result.Err == nil {
		t.Fatal("expected spawn error")
	}
	if result.PID != 0 {
		t.Fatalf("expected no pid, got %d", result.PID)
	}
}

func TestLaunchInterruptIsGracefulStop(t *testing.T) {
	l, _, out := newLauncher(t, "trap 'exit 130' INT\nsleep 30 &\nwait $!\n")
	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(300*time.Millisecond, cancel)
	defer timer.Stop()

	start := time.Now()
	result := l.Launch(ctx, collector())

	if !result.Interrupted {
		t.Fatalf("expected interrupted result, got %+v", result)
	}
	if result.Err != nil {
		t.Fatalf("interrupt must not be an error, got %v", result.Err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("launch did not return promptly after interrupt: %s", elapsed)
	}
	if !strings.Contains(out.String(), "👋 Data collection stopped") {
		t.Fatalf("expected stop line, got %q", out.String())
	}
}

func TestLaunchWithCancelledContext(t *testing.T) {
	l, _, _ := newLauncher(t, "exit 0\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := l.Launch(ctx, collector())
	if !result.Interrupted || result.Err != nil {
		t.Fatalf("expected interrupted result without error, got %+v", result)
	}
}

func TestConcurrentLaunchesShareSerializedStreams(t *testing.T) {
	var stdout, out bytes.Buffer
	sharedOut := launcher.SerializeWriter(&out)
	sharedStdout := launcher.SerializeWriter(&stdout)
	l := &launcher.Launcher{
		Interpreter: writeInterpreter(t, "for i in 1 2 3 4 5; do echo \"$1 $i\"; done\nexit 0\n"),
		Dir:         t.TempDir(),
		Stdin:       launcher.SerializeReader(strings.NewReader("")),
		Stdout:      sharedStdout,
		Stderr:      sharedStdout,
		Out:         sharedOut,
		Grace:       2 * time.Second,
	}
	dashboard := components.Component{
		Name:  components.Dashboard,
		Label: "Dashboard",
		Args:  []string{"app.py"},
	}

	var wg sync.WaitGroup
	results := make([]launcher.Result, 2)
	for i, comp := range []components.Component{collector(), dashboard} {
		i, comp := i, comp
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = l.Launch(context.Background(), comp)
		}()
	}
	wg.Wait()

	for _, result := range results {
		if !result.OK() {
			t.Fatalf("unexpected launch failure %+v", result)
		}
	}
	for _, want := range []string{"📊 Starting Data Collection...", "🚀 Starting DeskBuddy Dashboard..."} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in %q", want, out.String())
		}
	}
	if got := strings.Count(stdout.String(), "\n"); got != 10 {
		t.Fatalf("expected 10 child lines, got %d in %q", got, stdout.String())
	}
}

func TestSerializeKeepsFilesAndWrappersUnchanged(t *testing.T) {
	if w := launcher.SerializeWriter(os.Stdout); w != os.Stdout {
		t.Fatalf("expected *os.File to pass through, got %T", w)
	}
	wrapped := launcher.SerializeWriter(&bytes.Buffer{})
	if again := launcher.SerializeWriter(wrapped); again != wrapped {
		t.Fatal("expected an already serialized writer to be reused")
	}
	if r := launcher.SerializeReader(os.Stdin); r != os.Stdin {
		t.Fatalf("expected *os.File to pass through, got %T", r)
	}
}
