package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"deskbuddy/internal/preflight"
	"deskbuddy/internal/status"
)

func TestWelcomeWithoutSelector(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "🖥️  DeskBuddy - AI-Powered Productivity Companion")
	requireContains(t, out, "Welcome to DeskBuddy! 🎯")
	requireContains(t, out, "Then open your browser to: http://localhost:8501")
}

func TestCheckAllInstalled(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, []string{"--check"}, withMissing())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "✅ All required packages are installed")
	requireNotContains(t, out, "Missing required packages")
}

func TestCheckReportsSingleMissingCapability(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, []string{"--check"}, withMissing("plotly"))
	if err != nil {
		t.Fatalf("handled failures must exit cleanly, got %v", err)
	}
	requireContains(t, out, "❌ Missing required packages:")
	requireContains(t, out, "   - plotly\n")
	if got := strings.Count(out, "   - "); got != 1 {
		t.Fatalf("expected exactly one missing entry, got %d:\n%s", got, out)
	}
}

func TestStartShortCircuitsWhenNotReady(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, []string{"--start"}, withMissing("plotly"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "   - plotly")
	requireNotContains(t, out, "🎯 Starting DeskBuddy")
	requireNotContains(t, out, "🔧 Setting up")
	if log := readLaunchLog(t, env); log != "" {
		t.Fatalf("nothing should launch when not ready, got %q", log)
	}
	if _, err := os.Stat(filepath.Join(env.root, "data")); !os.IsNotExist(err) {
		t.Fatalf("bootstrap must not run when not ready (stat err %v)", err)
	}
}

func TestSetupCreatesEnvironment(t *testing.T) {
	env := setupCLITestEnv(t)
	for attempt := 0; attempt < 2; attempt++ {
		out, _, err := runCLI(t, env, []string{"--setup"}, withMissing())
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", attempt, err)
		}
		requireContains(t, out, "✅ Database initialized")
		requireContains(t, out, "🎉 Environment setup complete!")
	}
	for _, dir := range []string{"data", "logs", "models"} {
		if info, err := os.Stat(filepath.Join(env.root, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", dir, err)
		}
	}
}

func TestCollectLaunchesCollector(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, []string{"--collect"}, withMissing())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "📊 Starting Data Collection...")
	requireContains(t, readLaunchLog(t, env), filepath.Join(env.root, "src", "data_collection", "data_collector.py"))
}

func TestDashboardLaunchesServer(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, []string{"--dashboard"}, withMissing())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "🚀 Starting DeskBuddy Dashboard...")
	requireContains(t, readLaunchLog(t, env), "-m streamlit run "+filepath.Join(env.root, "src", "dashboard", "app.py")+" --server.port 8501 --server.headless false")
}

func TestStartLaunchesBothComponents(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, []string{"--start"}, withMissing())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "🎯 Starting DeskBuddy (Dashboard + Data Collection)...")
	requireContains(t, out, "📊 Starting Data Collection...")
	requireContains(t, out, "🚀 Starting DeskBuddy Dashboard...")
	waitFor(t, 5*time.Second, func() bool {
		log := readLaunchLog(t, env)
		return strings.Contains(log, "data_collector.py") && strings.Contains(log, "streamlit run")
	})
}

func TestStatusTextWithoutSetup(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, []string{"--status"}, withProcesses(), withMissing("plotly"))
	if err != nil {
		t.Fatalf("status must never fail on a broken environment: %v", err)
	}
	requireContains(t, out, "📈 DeskBuddy Status")
	requireContains(t, out, "❌ Database: Error - ")
	requireContains(t, out, "❌ Data Collection: Stopped")
	requireContains(t, out, "❌ Dashboard: Stopped")
	requireContains(t, out, "💡 Start DeskBuddy with:")
	requireNotContains(t, out, "Missing required packages")
}

func TestStatusVerboseListsMatches(t *testing.T) {
	env := setupCLITestEnv(t)
	proc := status.ProcessDescriptor{PID: 4242, Name: "python3", Args: []string{"python3", "-m", "streamlit", "run", "src/dashboard/app.py"}}
	out, _, err := runCLI(t, env, []string{"--status", "--verbose"}, withProcesses(proc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "✅ Dashboard: Running")
	requireContains(t, out, "4242")
	requireNotContains(t, out, "💡")
}

func TestStatusJSONAndYAML(t *testing.T) {
	env := setupCLITestEnv(t)
	proc := status.ProcessDescriptor{PID: 7, Name: "python", Args: []string{"python", "data_collector.py"}}

	out, _, err := runCLI(t, env, []string{"--status", "--output", "json"}, withProcesses(proc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var snap status.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if !snap.Running("collector") || snap.Running("dashboard") {
		t.Fatalf("unexpected components %+v", snap.Components)
	}
	if snap.Store.Connected || snap.Store.Error == "" {
		t.Fatalf("expected unreachable store, got %+v", snap.Store)
	}

	out, _, err = runCLI(t, env, []string{"--status", "-o", "yaml"}, withProcesses(proc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, out)
	}
	if _, ok := doc["components"]; !ok {
		t.Fatalf("expected components key in yaml:\n%s", out)
	}
}

func TestStatusRejectsUnknownOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, []string{"--status", "--output", "xml"}); err == nil {
		t.Fatal("expected error for unsupported output format")
	}
}

func TestSelectorsAreMutuallyExclusive(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, []string{"--check", "--start"}); err == nil {
		t.Fatal("expected error when combining selectors")
	}
}

func TestSelftestRoundTripsStore(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, []string{"selftest"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, out, "✅ Database test passed - 1 records found")
	requireContains(t, out, "(sqlite: "+filepath.Join(env.root, "data")+"/")
}

func TestRunActionRecoversPanic(t *testing.T) {
	cmd := &cobra.Command{}
	var out strings.Builder
	cmd.SetOut(&out)

	err := runAction(cmd, "Status", func() error { panic("boom") })
	if !errors.Is(err, errActionPanicked) {
		t.Fatalf("expected errActionPanicked, got %v", err)
	}
	requireContains(t, out.String(), "❌ Status failed unexpectedly: boom")
}

func TestRunActionTreatsInterruptAsHandled(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(&strings.Builder{})

	err := runAction(cmd, "Startup", func() error {
		return fmt.Errorf("readiness check interrupted: %w", context.Canceled)
	})
	if err != nil {
		t.Fatalf("an operator interrupt must be a handled outcome, got %v", err)
	}
}

func TestStartInterruptedDuringReadinessLaunchesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	interrupting := func(c *commandContext) {
		c.resolver = preflight.ResolverFunc(func(probeCtx context.Context, name string) error {
			return context.Canceled
		})
	}
	cmd := newRootCommandWith(interrupting)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout syncBuffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&syncBuffer{})
	cmd.SetArgs([]string{"--config", env.configPath, "--start"})

	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("interrupt must exit cleanly, got %v", err)
	}
	requireNotContains(t, stdout.String(), "Missing required packages")
	requireNotContains(t, stdout.String(), "🎯 Starting DeskBuddy")
	if log := readLaunchLog(t, env); log != "" {
		t.Fatalf("nothing should launch after an interrupt, got %q", log)
	}
}
