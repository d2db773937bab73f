// Package launcher runs a managed component as a foreground child process.
//
// Launch blocks until the child exits or ctx is cancelled. Cancellation
// (operator interrupt) sends SIGINT to the child, waits up to the grace
// period, then kills it; the outcome is reported as Interrupted rather than
// as an error. Spawn failures and non-zero exits are returned in
// Result.Err and never panic or exit the orchestrator.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"

	"deskbuddy/internal/components"
	"deskbuddy/internal/config"
	"deskbuddy/internal/logging"
)

const defaultGrace = 5 * time.Second

// Result is the outcome of one launch attempt.
type Result struct {
	Component   components.Name
	RunID       string
	PID         int
	ExitCode    int
	Interrupted bool
	Err         error
	StartedAt   time.Time
	FinishedAt  time.Time
}

// OK reports whether the child ran and stopped without an abnormal outcome.
func (r Result) OK() bool {
	return r.Err == nil
}

// Duration returns how long the child ran.
func (r Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Launcher starts components with a shared interpreter and working directory.
type Launcher struct {
	Interpreter string
	Dir         string
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	// Out receives the operator-facing start and stop lines.
	Out    io.Writer
	Grace  time.Duration
	Logger *slog.Logger
}

// New builds a Launcher for cfg that inherits the orchestrator's stdio.
func New(cfg *config.Config, out io.Writer, logger *slog.Logger) *Launcher {
	return &Launcher{
		Interpreter: cfg.Python.Interpreter,
		Dir:         cfg.Paths.Root,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Out:         out,
		Grace:       cfg.StopGrace(),
		Logger:      logger,
	}
}

// Launch runs comp and blocks until it exits or ctx is cancelled.
func (l *Launcher) Launch(ctx context.Context, comp components.Component) Result {
	runID := uuid.NewString()
	logger := logging.NewComponentLogger(l.Logger, string(comp.Name)).With(
		logging.String(logging.FieldRunID, runID),
	)
	result := Result{
		Component: comp.Name,
		RunID:     runID,
		ExitCode:  -1,
		StartedAt: time.Now(),
	}
	l.say(startLine(comp))

	cmd := exec.CommandContext(ctx, l.Interpreter, comp.Args...)
	cmd.Dir = l.Dir
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = l.grace()

	if err := cmd.Start(); err != nil {
		result.FinishedAt = time.Now()
		if ctx.Err() != nil {
			result.Interrupted = true
		} else {
			result.Err = fmt.Errorf("start %s: %w", comp.Name, err)
		}
		l.finish(logger, comp, result)
		return result
	}
	result.PID = cmd.Process.Pid
	logger.Info("component started",
		logging.String(logging.FieldEventType, "component_start"),
		logging.Int(logging.FieldPID, result.PID),
		logging.String("interpreter", l.Interpreter),
		logging.Strings("args", comp.Args),
	)

	waitErr := cmd.Wait()
	result.FinishedAt = time.Now()
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	switch {
	case ctx.Err() != nil || stoppedByInterrupt(cmd.ProcessState):
		result.Interrupted = true
	case waitErr != nil:
		result.Err = exitError(comp, waitErr)
	}
	l.finish(logger, comp, result)
	return result
}

func (l *Launcher) finish(logger *slog.Logger, comp components.Component, result Result) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "component_stop"),
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("ran_for", result.Duration()),
	}
	switch {
	case result.Interrupted:
		logger.Info("component interrupted", logging.Args(attrs...)...)
		l.say(fmt.Sprintf("\n👋 %s stopped", stopLabel(comp)))
	case result.Err != nil:
		logging.ErrorWithContext(logger, "component failed", "component_launch_failed",
			append(attrs,
				logging.Error(result.Err),
				logging.String(logging.FieldErrorHint, "run with --check to verify the environment"),
			)...,
		)
		l.say(fmt.Sprintf("❌ Error starting %s: %v", errorLabel(comp), result.Err))
	default:
		logger.Info("component exited", logging.Args(attrs...)...)
	}
}

func (l *Launcher) say(line string) {
	if l.Out != nil {
		fmt.Fprintln(l.Out, line)
	}
}

func (l *Launcher) grace() time.Duration {
	if l.Grace > 0 {
		return l.Grace
	}
	return defaultGrace
}

func exitError(comp components.Component, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s exited with status %d", comp.Name, exitErr.ExitCode())
	}
	return fmt.Errorf("%s: %w", comp.Name, err)
}

// stoppedByInterrupt reports whether the child died from SIGINT, which is
// how a terminal Ctrl+C reaches a child sharing our process group.
func stoppedByInterrupt(state *os.ProcessState) bool {
	if state == nil {
		return false
	}
	status, ok := state.Sys().(syscall.WaitStatus)
	return ok && status.Signaled() && status.Signal() == syscall.SIGINT
}

func startLine(comp components.Component) string {
	switch comp.Name {
	case components.Dashboard:
		return "🚀 Starting DeskBuddy Dashboard..."
	case components.Collector:
		return "📊 Starting Data Collection..."
	default:
		return fmt.Sprintf("🚀 Starting %s...", comp.Label)
	}
}

func stopLabel(comp components.Component) string {
	if comp.Name == components.Collector {
		return "Data collection"
	}
	return comp.Label
}

func errorLabel(comp components.Component) string {
	if comp.Name == components.Collector {
		return "data collection"
	}
	return string(comp.Name)
}
