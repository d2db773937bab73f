package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"deskbuddy/internal/config"
	"deskbuddy/internal/deps"
	"deskbuddy/internal/logging"
)

// ErrNotReady is returned by Gate when the wrapped action was skipped.
var ErrNotReady = errors.New("environment not ready")

const installHint = "pip install -r requirements.txt"

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Report is the outcome of one readiness check.
type Report struct {
	Ready        bool
	Missing      []string
	Capabilities []Result
	Binaries     []deps.Status
}

// Checker resolves the configured capabilities.
type Checker struct {
	Capabilities []string
	Resolver     Resolver
	Binaries     []deps.Requirement
	Logger       *slog.Logger
	Out          io.Writer
}

// NewChecker builds a Checker that probes cfg's required modules with its interpreter.
func NewChecker(cfg *config.Config, out io.Writer, logger *slog.Logger) *Checker {
	modules := make([]string, len(cfg.Python.RequiredModules))
	copy(modules, cfg.Python.RequiredModules)
	return &Checker{
		Capabilities: modules,
		Resolver: PythonResolver{
			Interpreter: cfg.Python.Interpreter,
			Dir:         cfg.Paths.Root,
			Timeout:     cfg.ProbeTimeout(),
		},
		Binaries: []deps.Requirement{deps.InterpreterRequirement(cfg.Python.Interpreter)},
		Logger:   logging.NewComponentLogger(logger, "preflight"),
		Out:      out,
	}
}

// Check probes every capability in order and reports the unresolved ones.
// It has no side effects beyond logging.
func (c *Checker) Check(ctx context.Context) Report {
	logger := c.logger()
	report := Report{
		Binaries: deps.CheckBinaries(c.Binaries),
		Missing:  []string{},
	}
	for _, status := range deps.MissingRequired(report.Binaries) {
		logger.Warn("required binary unavailable",
			logging.String("binary", status.Command),
			logging.String("reason", status.Detail),
			logging.String(logging.FieldImpact, "managed components cannot be launched"),
		)
	}

	for _, name := range c.Capabilities {
		result := c.probe(ctx, name)
		report.Capabilities = append(report.Capabilities, result)
		if !result.Passed {
			report.Missing = append(report.Missing, name)
			logger.Debug("capability unresolved",
				logging.String("capability", name),
				logging.String("reason", result.Detail),
			)
		}
	}

	report.Ready = len(report.Missing) == 0 && len(deps.MissingRequired(report.Binaries)) == 0
	logger.Info("readiness checked",
		logging.Bool("ready", report.Ready),
		logging.Int("capabilities", len(c.Capabilities)),
		logging.Strings("missing", report.Missing),
	)
	return report
}

func (c *Checker) probe(ctx context.Context, name string) (result Result) {
	result = Result{Name: name}
	if c.Resolver == nil {
		result.Detail = "no resolver configured"
		return result
	}
	defer func() {
		if r := recover(); r != nil {
			result = Result{Name: name, Detail: fmt.Sprintf("probe panicked: %v", r)}
		}
	}()
	if err := c.Resolver.Resolve(ctx, name); err != nil {
		result.Detail = err.Error()
		return result
	}
	result.Passed = true
	return result
}

// CheckAndRender runs Check and writes the operator report to c.Out. When
// ctx ends during the probes nothing is rendered and ctx's error is returned.
func (c *Checker) CheckAndRender(ctx context.Context) (Report, error) {
	report := c.Check(ctx)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("readiness check interrupted: %w", err)
	}
	if c.Out != nil {
		Render(c.Out, report)
	}
	return report, nil
}

// Gate runs action only when the environment is ready. The readiness report
// is written first; a skipped action yields ErrNotReady and an interrupted
// check yields ctx's error.
func (c *Checker) Gate(ctx context.Context, action func(context.Context) error) error {
	report, err := c.CheckAndRender(ctx)
	if err != nil {
		return err
	}
	if !report.Ready {
		return fmt.Errorf("%w: missing %s", ErrNotReady, describeMissing(report))
	}
	return action(ctx)
}

// Render writes the human-readable readiness report.
func Render(w io.Writer, report Report) {
	for _, status := range deps.MissingRequired(report.Binaries) {
		fmt.Fprintf(w, "❌ %s: %s\n", status.Name, status.Detail)
	}
	if len(report.Missing) == 0 {
		fmt.Fprintln(w, "✅ All required packages are installed")
		return
	}
	fmt.Fprintln(w, "❌ Missing required packages:")
	for _, name := range report.Missing {
		fmt.Fprintf(w, "   - %s\n", name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "💡 Install missing packages with:")
	fmt.Fprintf(w, "   %s\n", installHint)
}

func describeMissing(report Report) string {
	names := make([]string, 0, len(report.Missing)+1)
	for _, status := range deps.MissingRequired(report.Binaries) {
		names = append(names, status.Command)
	}
	names = append(names, report.Missing...)
	return strings.Join(names, ", ")
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}
