package status_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"deskbuddy/internal/components"
	"deskbuddy/internal/status"
	"deskbuddy/internal/store"
	"deskbuddy/internal/testsupport"
)

func fixedProcesses(procs ...status.ProcessDescriptor) status.ProcessEnumerator {
	return status.EnumeratorFunc(func(context.Context) ([]status.ProcessDescriptor, error) {
		return procs, nil
	})
}

func noRecords(context.Context) ([]store.Record, error) { return nil, nil }

func newInspector(t *testing.T, enumerator status.ProcessEnumerator) *status.Inspector {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	inspector := status.NewInspector(cfg, nil)
	inspector.Enumerator = enumerator
	inspector.Stats = noRecords
	return inspector
}

func TestDashboardRunningRequiresBothSubstrings(t *testing.T) {
	inspector := newInspector(t, fixedProcesses(
		status.ProcessDescriptor{PID: 10, Name: "Python3.11", Args: []string{"python3", "-m", "streamlit", "run", "/srv/deskbuddy/src/dashboard/app.py"}},
	))
	snap := inspector.Inspect(context.Background())

	if !snap.Running(components.Dashboard) {
		t.Fatal("expected dashboard running")
	}
	if snap.Running(components.Collector) {
		t.Fatal("collector should not match the dashboard command line")
	}
	if snap.Candidates != 1 {
		t.Fatalf("expected one candidate, got %d", snap.Candidates)
	}
}

func TestNoMatchingProcessesReportsStopped(t *testing.T) {
	inspector := newInspector(t, fixedProcesses(
		status.ProcessDescriptor{PID: 10, Name: "python3", Args: []string{"python3", "manage.py", "runserver"}},
		status.ProcessDescriptor{PID: 11, Name: "bash", Args: []string{"bash", "-c", "streamlit run app.py"}},
	))
	snap := inspector.Inspect(context.Background())

	if snap.AnyRunning() {
		t.Fatalf("expected nothing running, got %+v", snap.Components)
	}
	if snap.Candidates != 1 {
		t.Fatalf("non-interpreter processes must be skipped, got %d candidates", snap.Candidates)
	}
}

func TestDeniedCommandLineIsSkipped(t *testing.T) {
	inspector := newInspector(t, fixedProcesses(
		status.ProcessDescriptor{PID: 1, Name: "python3", ArgsErr: errors.New("permission denied")},
		status.ProcessDescriptor{PID: 2, Name: "python3", Args: []string{"python3", "/srv/src/data_collection/data_collector.py"}},
	))
	snap := inspector.Inspect(context.Background())

	if !snap.Running(components.Collector) {
		t.Fatal("expected collector running")
	}
	if snap.Running(components.Dashboard) {
		t.Fatal("denied entry must not match")
	}
	if snap.ProcessError != "" {
		t.Fatalf("denied command line is not a scan failure, got %q", snap.ProcessError)
	}
}

func TestStoreReportsTodayRecordCount(t *testing.T) {
	now := time.Now()
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	testsupport.InsertRecords(t, s, 4, func(i int) store.Record {
		return store.Record{RecordedAt: now, Source: "collector", KeyCount: i}
	})

	inspector := status.NewInspector(cfg, nil)
	inspector.Enumerator = fixedProcesses()
	snap := inspector.Inspect(context.Background())

	if !snap.Store.Connected || snap.Store.Records != 4 {
		t.Fatalf("expected connected store with 4 records, got %+v", snap.Store)
	}
}

func TestUnreachableStoreIsIsolated(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	inspector := status.NewInspector(cfg, nil)
	inspector.Enumerator = fixedProcesses(
		status.ProcessDescriptor{PID: 2, Name: "python", Args: []string{"python", "data_collector.py"}},
	)
	snap := inspector.Inspect(context.Background())

	if snap.Store.Connected {
		t.Fatal("expected store to be unreachable before setup")
	}
	if snap.Store.Error == "" {
		t.Fatal("expected a store error detail")
	}
	if !snap.Running(components.Collector) {
		t.Fatal("store failure must not affect process liveness")
	}
}

func TestPanicsAreContainedPerCheck(t *testing.T) {
	inspector := newInspector(t, status.EnumeratorFunc(func(context.Context) ([]status.ProcessDescriptor, error) {
		panic("proc table exploded")
	}))
	inspector.Stats = func(context.Context) ([]store.Record, error) {
		return []store.Record{{}, {}}, nil
	}
	snap := inspector.Inspect(context.Background())

	if !snap.Store.Connected || snap.Store.Records != 2 {
		t.Fatalf("store check should survive a process panic, got %+v", snap.Store)
	}
	if !strings.Contains(snap.ProcessError, "exploded") {
		t.Fatalf("expected process panic detail, got %q", snap.ProcessError)
	}
}

func TestRenderBothStoppedShowsHint(t *testing.T) {
	inspector := newInspector(t, fixedProcesses())
	inspector.Stats = func(context.Context) ([]store.Record, error) { return nil, errors.New("database is locked") }
	var out bytes.Buffer
	status.Render(&out, inspector.Inspect(context.Background()))

	text := out.String()
	for _, want := range []string{
		"❌ Database: Error - database is locked",
		"❌ Data Collection: Stopped",
		"❌ Dashboard: Stopped",
		"💡 Start DeskBuddy with:",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in report:\n%s", want, text)
		}
	}
}

func TestRenderRunningOmitsHint(t *testing.T) {
	inspector := newInspector(t, fixedProcesses(
		status.ProcessDescriptor{PID: 2, Name: "python", Args: []string{"python", "data_collector.py"}},
	))
	var out bytes.Buffer
	status.Render(&out, inspector.Inspect(context.Background()))

	text := out.String()
	if !strings.Contains(text, "✅ Database: Connected (0 records today)") {
		t.Fatalf("unexpected store line:\n%s", text)
	}
	if !strings.Contains(text, "✅ Data Collection: Running") {
		t.Fatalf("expected collector running line:\n%s", text)
	}
	if strings.Contains(text, "💡") {
		t.Fatalf("hint must only appear when both are stopped:\n%s", text)
	}
}
