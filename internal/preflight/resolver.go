package preflight

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Resolver reports whether a single capability is available. A nil error
// means the capability resolved.
type Resolver interface {
	Resolve(ctx context.Context, name string) error
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ctx context.Context, name string) error

// Resolve calls f(ctx, name).
func (f ResolverFunc) Resolve(ctx context.Context, name string) error {
	return f(ctx, name)
}

// ErrModuleNotFound is returned by PythonResolver when the interpreter
// cannot import the requested module.
var ErrModuleNotFound = errors.New("module not importable")

const (
	moduleMissingExitCode = 3
	defaultProbeTimeout   = 10 * time.Second
)

// probeScript imports argv[1] and exits with moduleMissingExitCode on ImportError.
const probeScript = "import importlib,sys\n" +
	"try: importlib.import_module(sys.argv[1])\n" +
	"except ImportError: sys.exit(3)\n"

// PythonResolver resolves capabilities by importing them in a child interpreter.
type PythonResolver struct {
	Interpreter string
	Dir         string
	Timeout     time.Duration
}

// Resolve runs the interpreter once for the named module.
func (r PythonResolver) Resolve(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty module name")
	}
	interpreter := strings.TrimSpace(r.Interpreter)
	if interpreter == "" {
		return fmt.Errorf("python interpreter not configured")
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, interpreter, "-c", probeScript, name)
	cmd.Dir = r.Dir
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("probe %s: timed out after %s", name, timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == moduleMissingExitCode {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	detail := strings.TrimSpace(string(output))
	if detail != "" {
		return fmt.Errorf("probe %s: %w: %s", name, err, lastLine(detail))
	}
	return fmt.Errorf("probe %s: %w", name, err)
}

func lastLine(text string) string {
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
