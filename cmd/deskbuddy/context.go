package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"deskbuddy/internal/config"
	"deskbuddy/internal/launcher"
	"deskbuddy/internal/logging"
	"deskbuddy/internal/preflight"
	"deskbuddy/internal/sequencer"
	"deskbuddy/internal/status"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	// The orchestrator, its logger and every child share these streams.
	streamsOnce sync.Once
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer

	// collector is the background task of the last --start, if any.
	collector *sequencer.Task

	// resolver and enumerator replace the Python probe and the host
	// process table when set.
	resolver   preflight.Resolver
	enumerator status.ProcessEnumerator
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		var level string
		if c.logLevelFlag != nil {
			level = *c.logLevelFlag
		}
		logger, err := logging.NewFromConfig(c.configValue(), level, c.stderrFor(cmd))
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) bindStreams(cmd *cobra.Command) {
	c.streamsOnce.Do(func() {
		c.stdin = launcher.SerializeReader(cmd.InOrStdin())
		c.stdout = launcher.SerializeWriter(cmd.OutOrStdout())
		c.stderr = launcher.SerializeWriter(cmd.ErrOrStderr())
	})
}

func (c *commandContext) stdoutFor(cmd *cobra.Command) io.Writer {
	c.bindStreams(cmd)
	return c.stdout
}

func (c *commandContext) stderrFor(cmd *cobra.Command) io.Writer {
	c.bindStreams(cmd)
	return c.stderr
}

func (c *commandContext) stdinFor(cmd *cobra.Command) io.Reader {
	c.bindStreams(cmd)
	return c.stdin
}

func (c *commandContext) checker(cmd *cobra.Command, cfg *config.Config, out io.Writer) *preflight.Checker {
	checker := preflight.NewChecker(cfg, out, c.loggerFor(cmd))
	if c.resolver != nil {
		checker.Resolver = c.resolver
	}
	return checker
}

func (c *commandContext) inspector(cmd *cobra.Command, cfg *config.Config) *status.Inspector {
	inspector := status.NewInspector(cfg, c.loggerFor(cmd))
	if c.enumerator != nil {
		inspector.Enumerator = c.enumerator
	}
	return inspector
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
