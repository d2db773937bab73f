package sequencer

import (
	"context"
	"fmt"
	"time"

	"deskbuddy/internal/components"
	"deskbuddy/internal/launcher"
)

// Task is a component launch running on its own goroutine. It can be
// cancelled independently and exposes its completion, but nothing forces
// a caller to wait for it.
type Task struct {
	component components.Component
	started   chan struct{}
	done      chan struct{}
	cancel    context.CancelFunc
	result    launcher.Result
}

// Go schedules comp on a new goroutine. The task context derives from ctx,
// so an operator interrupt reaches the background child too.
func Go(ctx context.Context, l Launcher, comp components.Component) *Task {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		component: comp,
		started:   make(chan struct{}),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
	go t.run(taskCtx, l)
	return t
}

func (t *Task) run(ctx context.Context, l Launcher) {
	defer close(t.done)
	defer t.cancel()
	defer func() {
		if r := recover(); r != nil {
			t.result = launcher.Result{
				Component:  t.component.Name,
				ExitCode:   -1,
				Err:        fmt.Errorf("%s launch panicked: %v", t.component.Name, r),
				FinishedAt: time.Now(),
			}
		}
	}()
	close(t.started)
	t.result = l.Launch(ctx, t.component)
}

// Started is closed once the launch call is about to begin.
func (t *Task) Started() <-chan struct{} { return t.started }

// Done is closed when the launch returns.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel interrupts the background launch.
func (t *Task) Cancel() { t.cancel() }

// Result returns the launch outcome once Done is closed.
func (t *Task) Result() (launcher.Result, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return launcher.Result{}, false
	}
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) (launcher.Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return launcher.Result{}, ctx.Err()
	}
}
