// Package sequencer starts the collector in the background and the
// dashboard in the foreground.
//
// The collector task is scheduled first; once its launch has begun the
// sequencer waits a fixed delay so store initialization can settle, then
// blocks on the dashboard. StartBoth returns when the dashboard returns and
// never joins the collector: the returned Task lets callers observe or
// cancel it, but the ordering is time-based only.
package sequencer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"deskbuddy/internal/components"
	"deskbuddy/internal/launcher"
	"deskbuddy/internal/logging"
)

// Launcher runs a single component to completion.
type Launcher interface {
	Launch(ctx context.Context, comp components.Component) launcher.Result
}

// Outcome is what StartBoth observed before returning.
type Outcome struct {
	Dashboard launcher.Result
	Collector *Task
}

// Sequencer coordinates the dual-component start.
type Sequencer struct {
	Launcher  Launcher
	Collector components.Component
	Dashboard components.Component
	Delay     time.Duration
	Out       io.Writer
	Logger    *slog.Logger
}

// StartBoth launches the collector in the background, waits Delay, then runs
// the dashboard until it exits or ctx is cancelled. Out is written while the
// collector runs, so callers sharing it with the launcher should pass a
// serialized writer (see launcher.SerializeWriter).
func (s *Sequencer) StartBoth(ctx context.Context) Outcome {
	logger := logging.NewComponentLogger(s.Logger, "sequencer")
	if s.Out != nil {
		fmt.Fprintln(s.Out, "🎯 Starting DeskBuddy (Dashboard + Data Collection)...")
	}

	task := Go(ctx, s.Launcher, s.Collector)
	select {
	case <-task.Started():
	case <-ctx.Done():
	}
	logger.Debug("collector scheduled", logging.Duration("delay", s.Delay))

	if err := sleep(ctx, s.Delay); err != nil {
		logger.Info("startup interrupted before dashboard launch")
		if s.Out != nil {
			fmt.Fprintf(s.Out, "\n👋 %s stopped\n", s.Dashboard.Label)
		}
		return Outcome{
			Dashboard: launcher.Result{
				Component:   s.Dashboard.Name,
				ExitCode:    -1,
				Interrupted: true,
			},
			Collector: task,
		}
	}

	result := s.Launcher.Launch(ctx, s.Dashboard)
	if _, finished := task.Result(); !finished {
		logger.Debug("dashboard returned while collector still running")
	}
	return Outcome{Dashboard: result, Collector: task}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
