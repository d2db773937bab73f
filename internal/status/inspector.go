// Package status inspects whether DeskBuddy's components are running and
// whether its store is reachable.
//
// Liveness is inferred from the process table: a component is Running when
// some interpreter process's command line contains every substring of the
// component signature. The store check and the process check are isolated;
// a failure or panic in one leaves the other's result intact. Nothing is
// cached between calls.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"deskbuddy/internal/components"
	"deskbuddy/internal/config"
	"deskbuddy/internal/logging"
	"deskbuddy/internal/store"
)

// StatsFunc reads today's records from the store.
type StatsFunc func(ctx context.Context) ([]store.Record, error)

// StoreStatus is the outcome of the store sub-check.
type StoreStatus struct {
	Connected bool   `json:"connected" yaml:"connected"`
	Records   int    `json:"records" yaml:"records"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ComponentStatus is the liveness of one managed component.
type ComponentStatus struct {
	Name    components.Name     `json:"name" yaml:"name"`
	Label   string              `json:"label" yaml:"label"`
	Running bool                `json:"running" yaml:"running"`
	Matches []ProcessDescriptor `json:"matches,omitempty" yaml:"matches,omitempty"`
}

// Snapshot is a point-in-time status report.
type Snapshot struct {
	CheckedAt    time.Time         `json:"checked_at" yaml:"checked_at"`
	Store        StoreStatus       `json:"store" yaml:"store"`
	Components   []ComponentStatus `json:"components" yaml:"components"`
	Candidates   int               `json:"candidates" yaml:"candidates"`
	ProcessError string            `json:"process_error,omitempty" yaml:"process_error,omitempty"`
}

// Running reports the liveness of the named component.
func (s Snapshot) Running(name components.Name) bool {
	for _, comp := range s.Components {
		if comp.Name == name {
			return comp.Running
		}
	}
	return false
}

// AnyRunning reports whether at least one component is running.
func (s Snapshot) AnyRunning() bool {
	for _, comp := range s.Components {
		if comp.Running {
			return true
		}
	}
	return false
}

// Inspector builds snapshots.
type Inspector struct {
	Components []components.Component
	Enumerator ProcessEnumerator
	Stats      StatsFunc
	Marker     string
	Logger     *slog.Logger
	Now        func() time.Time
}

// NewInspector wires an Inspector to the host process table and cfg's store.
func NewInspector(cfg *config.Config, logger *slog.Logger) *Inspector {
	return &Inspector{
		Components: components.All(cfg),
		Enumerator: SystemEnumerator{},
		Stats:      StoreStats(cfg),
		Marker:     cfg.Status.InterpreterMarker,
		Logger:     logger,
	}
}

// StoreStats opens the existing store for each call and reads today's records.
func StoreStats(cfg *config.Config) StatsFunc {
	return func(ctx context.Context) ([]store.Record, error) {
		s, err := store.OpenExisting(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.QueryTodayStats(ctx)
	}
}

// Inspect runs both sub-checks and never fails.
func (i *Inspector) Inspect(ctx context.Context) Snapshot {
	logger := logging.NewComponentLogger(i.Logger, "status")
	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	snap := Snapshot{CheckedAt: now()}
	snap.Store = i.checkStore(ctx, logger)
	snap.Components, snap.Candidates, snap.ProcessError = i.checkProcesses(ctx, logger)
	return snap
}

func (i *Inspector) checkStore(ctx context.Context, logger *slog.Logger) (result StoreStatus) {
	defer func() {
		if r := recover(); r != nil {
			result = StoreStatus{Error: fmt.Sprintf("store check panicked: %v", r)}
		}
	}()
	if i.Stats == nil {
		return StoreStatus{Error: "store not configured"}
	}
	records, err := i.Stats(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "store check failed", "status_store_unreachable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run --setup to initialize the store"),
			logging.String(logging.FieldImpact, "record count unavailable"),
		)
		return StoreStatus{Error: err.Error()}
	}
	return StoreStatus{Connected: true, Records: len(records)}
}

func (i *Inspector) checkProcesses(ctx context.Context, logger *slog.Logger) (statuses []ComponentStatus, candidates int, procErr string) {
	statuses = make([]ComponentStatus, len(i.Components))
	for idx, comp := range i.Components {
		statuses[idx] = ComponentStatus{Name: comp.Name, Label: comp.Label}
	}
	defer func() {
		if r := recover(); r != nil {
			for idx := range statuses {
				statuses[idx].Running = false
				statuses[idx].Matches = nil
			}
			procErr = fmt.Sprintf("process check panicked: %v", r)
		}
	}()
	if i.Enumerator == nil {
		return statuses, 0, "process enumerator not configured"
	}
	procs, err := i.Enumerator.Processes(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "process enumeration failed", "status_process_scan_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "components reported as stopped"),
		)
		return statuses, 0, err.Error()
	}

	fold := cases.Fold()
	marker := fold.String(i.Marker)
	for _, proc := range procs {
		if !strings.Contains(fold.String(proc.Name), marker) {
			continue
		}
		candidates++
		cmdline := proc.Cmdline()
		if cmdline == "" {
			if proc.ArgsErr != nil {
				logger.Debug("command line unavailable",
					logging.Int64(logging.FieldPID, int64(proc.PID)),
					logging.Error(proc.ArgsErr),
				)
			}
			continue
		}
		for idx, comp := range i.Components {
			if comp.Matches(cmdline) {
				statuses[idx].Running = true
				statuses[idx].Matches = append(statuses[idx].Matches, proc)
			}
		}
	}
	logger.Debug("process scan complete",
		logging.Int("processes", len(procs)),
		logging.Int("candidates", candidates),
	)
	return statuses, candidates, ""
}
