package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"deskbuddy/internal/bootstrap"
	"deskbuddy/internal/components"
	"deskbuddy/internal/config"
	"deskbuddy/internal/launcher"
	"deskbuddy/internal/logging"
	"deskbuddy/internal/preflight"
	"deskbuddy/internal/sequencer"
)

// errActionPanicked marks a recovered panic; main exits 1 without reprinting.
var errActionPanicked = errors.New("action failed unexpectedly")

// runAction runs fn and converts a panic into a labeled failure line. A
// readiness failure or an operator interrupt is a handled outcome.
func runAction(cmd *cobra.Command, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "❌ %s failed unexpectedly: %v\n", name, r)
			err = fmt.Errorf("%w: %s", errActionPanicked, name)
		}
	}()
	err = fn()
	if errors.Is(err, preflight.ErrNotReady) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// interruptContext ends on SIGINT or SIGTERM.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runCheck(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	sigCtx, stop := interruptContext(cmd)
	defer stop()
	_, err := ctx.checker(cmd, cfg, cmd.OutOrStdout()).CheckAndRender(sigCtx)
	return err
}

func runSetup(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	sigCtx, stop := interruptContext(cmd)
	defer stop()
	out := ctx.stdoutFor(cmd)
	return ctx.checker(cmd, cfg, out).Gate(sigCtx, func(runCtx context.Context) error {
		bootstrap.New(cfg, out, ctx.loggerFor(cmd)).Run(runCtx)
		return nil
	})
}

func newCLILauncher(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) *launcher.Launcher {
	l := launcher.New(cfg, ctx.stdoutFor(cmd), ctx.loggerFor(cmd))
	l.Stdin = ctx.stdinFor(cmd)
	l.Stdout = ctx.stdoutFor(cmd)
	l.Stderr = ctx.stderrFor(cmd)
	return l
}

func runDashboard(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	return runSingle(cmd, ctx, cfg, components.NewDashboard(cfg))
}

func runCollect(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	return runSingle(cmd, ctx, cfg, components.NewCollector(cfg))
}

func runSingle(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, comp components.Component) error {
	sigCtx, stop := interruptContext(cmd)
	defer stop()
	return ctx.checker(cmd, cfg, ctx.stdoutFor(cmd)).Gate(sigCtx, func(runCtx context.Context) error {
		newCLILauncher(cmd, ctx, cfg).Launch(runCtx, comp)
		return nil
	})
}

func runStart(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	sigCtx, stop := interruptContext(cmd)
	defer stop()
	return ctx.checker(cmd, cfg, ctx.stdoutFor(cmd)).Gate(sigCtx, func(runCtx context.Context) error {
		logger := ctx.loggerFor(cmd)
		seq := &sequencer.Sequencer{
			Launcher:  newCLILauncher(cmd, ctx, cfg),
			Collector: components.NewCollector(cfg),
			Dashboard: components.NewDashboard(cfg),
			Delay:     cfg.StartupDelay(),
			Out:       ctx.stdoutFor(cmd),
			Logger:    logger,
		}
		outcome := seq.StartBoth(runCtx)
		ctx.collector = outcome.Collector
		if !outcome.Dashboard.Interrupted {
			return nil
		}

		// The interrupt also reached the collector; give it the grace period
		// to report its own stop before the orchestrator exits.
		waitCtx, cancel := context.WithTimeout(context.Background(), cfg.StopGrace()+time.Second)
		defer cancel()
		if _, err := outcome.Collector.Wait(waitCtx); err != nil {
			logging.WarnWithContext(logger, "collector still stopping at exit", "collector_stop_timeout",
				logging.Duration("grace", cfg.StopGrace()),
				logging.String(logging.FieldImpact, "collector may outlive the orchestrator"),
			)
		}
		return nil
	})
}
