package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deskbuddy/internal/config"
	"deskbuddy/internal/logging"
	"deskbuddy/internal/store"
)

func newSelftestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Exercise the productivity store with a test record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runAction(cmd, "Selftest", func() error {
				return runStoreSelftest(cmd, ctx, cfg)
			})
		},
	}
}

func runStoreSelftest(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	logger := logging.NewComponentLogger(ctx.loggerFor(cmd), "selftest")
	fmt.Fprintln(out, "🗄️ Testing database...")

	count, location, err := storeRoundTrip(cmd, cfg)
	if err != nil {
		logging.ErrorWithContext(logger, "store selftest failed", "selftest_store_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run --setup, then check the [store] config section"),
		)
		fmt.Fprintf(out, "❌ Database test failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "✅ Database test passed - %d records found (%s)\n", count, location)
	return nil
}

// storeRoundTrip inserts one record and counts today's records. It returns
// the count and a "driver: location" description of the store it used.
func storeRoundTrip(cmd *cobra.Command, cfg *config.Config) (int, string, error) {
	runCtx := cmd.Context()
	s, err := store.Open(runCtx, cfg)
	if err != nil {
		return 0, "", err
	}
	defer s.Close()
	location := fmt.Sprintf("%s: %s", s.Driver(), s.Location())
	if err := s.Initialize(runCtx); err != nil {
		return 0, location, err
	}
	if _, err := s.InsertRecord(runCtx, store.Record{
		Source:       "selftest",
		ActiveWindow: "Test Window",
		TypingSpeed:  45.0,
		KeyCount:     10,
		IsActive:     true,
	}); err != nil {
		return 0, location, err
	}
	records, err := s.QueryTodayStats(runCtx)
	if err != nil {
		return 0, location, err
	}
	return len(records), location, nil
}
