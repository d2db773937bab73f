package status

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/process"
)

// ProcessDescriptor is a read-only view of one OS process.
type ProcessDescriptor struct {
	PID     int32    `json:"pid" yaml:"pid"`
	Name    string   `json:"name" yaml:"name"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
	ArgsErr error    `json:"-" yaml:"-"`
}

// Cmdline joins the argument vector. A process whose arguments could not be
// read has an empty command line.
func (p ProcessDescriptor) Cmdline() string {
	if p.ArgsErr != nil {
		return ""
	}
	return strings.Join(p.Args, " ")
}

// ProcessEnumerator lists the processes currently running.
type ProcessEnumerator interface {
	Processes(ctx context.Context) ([]ProcessDescriptor, error)
}

// EnumeratorFunc adapts a function to ProcessEnumerator.
type EnumeratorFunc func(ctx context.Context) ([]ProcessDescriptor, error)

// Processes calls f(ctx).
func (f EnumeratorFunc) Processes(ctx context.Context) ([]ProcessDescriptor, error) {
	return f(ctx)
}

// SystemEnumerator reads the host process table. Processes that exit or deny
// access mid-scan are kept with whatever fields could be read.
type SystemEnumerator struct{}

// Processes lists every visible process.
func (SystemEnumerator) Processes(ctx context.Context) ([]ProcessDescriptor, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProcessDescriptor, 0, len(procs))
	for _, proc := range procs {
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		desc := ProcessDescriptor{PID: proc.Pid, Name: name}
		desc.Args, desc.ArgsErr = proc.CmdlineSliceWithContext(ctx)
		out = append(out, desc)
	}
	return out, nil
}
