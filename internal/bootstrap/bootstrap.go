// Package bootstrap prepares the on-disk environment: the data, logs and
// models directories and the productivity store schema.
//
// Run is idempotent. Directories are created with exist-ok semantics and are
// not removed when a later step fails. Store initialization runs under a file
// lock so concurrent setups do not race on schema creation.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"deskbuddy/internal/config"
	"deskbuddy/internal/logging"
	"deskbuddy/internal/preflight"
	"deskbuddy/internal/store"
)

const (
	lockTimeout    = 30 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// Initializer is the store's initialization contract.
type Initializer interface {
	Initialize(ctx context.Context) error
	Close() error
}

// Bootstrapper creates directories and initializes the store.
type Bootstrapper struct {
	Directories []string
	LockPath    string
	OpenStore   func(ctx context.Context) (Initializer, error)
	Out         io.Writer
	Logger      *slog.Logger
}

// New builds a Bootstrapper for cfg.
func New(cfg *config.Config, out io.Writer, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		Directories: cfg.RequiredDirectories(),
		LockPath:    cfg.SetupLockPath(),
		OpenStore: func(ctx context.Context) (Initializer, error) {
			return store.Open(ctx, cfg)
		},
		Out:    out,
		Logger: logger,
	}
}

// Run prepares the environment and reports whether every step succeeded.
func (b *Bootstrapper) Run(ctx context.Context) bool {
	logger := logging.NewComponentLogger(b.Logger, "bootstrap")
	b.say("🔧 Setting up DeskBuddy environment...")

	for _, dir := range b.Directories {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.ErrorWithContext(logger, "directory creation failed", "bootstrap_directory_failed",
				logging.String("path", dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the project root"),
			)
			b.say(fmt.Sprintf("❌ Failed to create directory: %s (%v)", dir, err))
			return false
		}
		if check := preflight.CheckDirectoryAccess(dir, dir); !check.Passed {
			b.say(fmt.Sprintf("❌ Directory not usable: %s", check.Detail))
			return false
		}
		b.say(fmt.Sprintf("✅ Created directory: %s", dir))
	}

	if err := b.initializeStore(ctx, logger); err != nil {
		logging.ErrorWithContext(logger, "store initialization failed", "bootstrap_store_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check store settings in the config file"),
		)
		b.say(fmt.Sprintf("❌ Database initialization failed: %v", err))
		return false
	}
	b.say("✅ Database initialized")
	b.say("🎉 Environment setup complete!")
	return true
}

func (b *Bootstrapper) initializeStore(ctx context.Context, logger *slog.Logger) error {
	if b.OpenStore == nil {
		return fmt.Errorf("store not configured")
	}
	if b.LockPath != "" {
		lock := flock.New(b.LockPath)
		lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
		defer cancel()
		locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("acquire setup lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("setup lock %s is held by another process", b.LockPath)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("failed to release setup lock", logging.Error(err))
			}
		}()
	}

	s, err := b.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Initialize(ctx)
}

func (b *Bootstrapper) say(line string) {
	if b.Out != nil {
		fmt.Fprintln(b.Out, line)
	}
}
