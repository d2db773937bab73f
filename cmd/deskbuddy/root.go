package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"deskbuddy/internal/config"
)

const ruleWidth = 50

type selectorFlags struct {
	check     bool
	setup     bool
	start     bool
	status    bool
	dashboard bool
	collect   bool
}

type outputFlags struct {
	format  string
	verbose bool
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(nil)
}

// newRootCommandWith lets tests swap collaborators on the command context
// before any command runs.
func newRootCommandWith(configure func(*commandContext)) *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var selectors selectorFlags
	var output outputFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag)
	if configure != nil {
		configure(ctx)
	}

	rootCmd := &cobra.Command{
		Use:           "deskbuddy",
		Short:         "DeskBuddy - AI-Powered Productivity Companion",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output.format)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == outputText {
				printBanner(out)
			}

			switch {
			case selectors.check:
				return runAction(cmd, "Dependency check", func() error { return runCheck(cmd, ctx, cfg) })
			case selectors.setup:
				return runAction(cmd, "Setup", func() error { return runSetup(cmd, ctx, cfg) })
			case selectors.status:
				return runAction(cmd, "Status", func() error { return runStatus(cmd, ctx, cfg, format, output.verbose) })
			case selectors.dashboard:
				return runAction(cmd, "Dashboard", func() error { return runDashboard(cmd, ctx, cfg) })
			case selectors.collect:
				return runAction(cmd, "Data collection", func() error { return runCollect(cmd, ctx, cfg) })
			case selectors.start:
				return runAction(cmd, "Startup", func() error { return runStart(cmd, ctx, cfg) })
			default:
				printWelcome(out, cfg)
				return nil
			}
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&selectors.dashboard, "dashboard", false, "Start only the dashboard")
	flags.BoolVar(&selectors.collect, "collect", false, "Start only data collection")
	flags.BoolVar(&selectors.start, "start", false, "Start both dashboard and data collection")
	flags.BoolVar(&selectors.status, "status", false, "Show current status")
	flags.BoolVar(&selectors.setup, "setup", false, "Set up environment")
	flags.BoolVar(&selectors.check, "check", false, "Check dependencies")
	rootCmd.MarkFlagsMutuallyExclusive("dashboard", "collect", "start", "status", "setup", "check")

	flags.StringVarP(&output.format, "output", "o", string(outputText), "Status output format: text, json or yaml")
	flags.BoolVarP(&output.verbose, "verbose", "v", false, "List the processes matched by --status")

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newSelftestCommand(ctx))

	return rootCmd
}

func printBanner(out io.Writer) {
	fmt.Fprintln(out, "🖥️  DeskBuddy - AI-Powered Productivity Companion")
	fmt.Fprintln(out, strings.Repeat("=", ruleWidth))
}

func printWelcome(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Welcome to DeskBuddy! 🎯")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Available commands:")
	fmt.Fprintln(out, "  --check      Check if all dependencies are installed")
	fmt.Fprintln(out, "  --setup      Set up the DeskBuddy environment")
	fmt.Fprintln(out, "  --start      Start both dashboard and data collection")
	fmt.Fprintln(out, "  --dashboard  Start only the dashboard")
	fmt.Fprintln(out, "  --collect    Start only data collection")
	fmt.Fprintln(out, "  --status     Show current status")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Quick start:")
	fmt.Fprintln(out, "  1. deskbuddy --check")
	fmt.Fprintln(out, "  2. deskbuddy --setup")
	fmt.Fprintln(out, "  3. deskbuddy --start")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Then open your browser to: %s\n", cfg.DashboardURL())
}
