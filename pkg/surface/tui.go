package surface

import (
	"context"
	"sync"

	"github.com/bjartek/tandem/pkg/events"
	"github.com/bjartek/tandem/pkg/logs"
	"github.com/cockroachdb/errors"
	tea "github.com/charmbracelet/bubbletea"
)

// TUI is a Bubble Tea program acting as the primary surface. It only
// accepts navigation once a program is attached and its model has
// initialized; before that, and after Detach, it is unavailable.
type TUI struct {
	mu      sync.Mutex
	program logs.Sender
	ready   bool
	readyCh chan struct{}
}

func NewTUI() *TUI {
	return &TUI{readyCh: make(chan struct{})}
}

// Attach binds the surface to a program that is about to run.
func (t *TUI) Attach(program logs.Sender) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.program = program
	t.ready = false
	t.readyCh = make(chan struct{})
}

// MarkReady is called from the model's Init once the program is running.
func (t *TUI) MarkReady() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.program != nil && !t.ready {
		t.ready = true
		close(t.readyCh)
	}
}

// WaitReady blocks until MarkReady has run for the attached program or ctx
// is done. Launch progress sent before that would be dropped.
func (t *TUI) WaitReady(ctx context.Context) error {
	t.mu.Lock()
	readyCh := t.readyCh
	t.mu.Unlock()

	select {
	case <-readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Detach makes the surface unavailable again, typically after the program quits.
func (t *TUI) Detach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.program = nil
	t.ready = false
	t.readyCh = make(chan struct{})
}

// Available reports whether Navigate would be delivered.
func (t *TUI) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.program != nil && t.ready
}

func (t *TUI) Navigate(ctx context.Context, url string) error {
	if !t.Available() {
		return ErrSurfaceUnavailable
	}
	if err := t.send(ctx, events.NavigateMsg{URL: url}); err != nil {
		return errors.Wrapf(err, "navigate to %s", url)
	}
	return nil
}

// Step forwards launch progress to the program. Dropped while unavailable.
func (t *TUI) Step(step events.Step, state events.StepState, err error) {
	_ = t.sendIfAvailable(events.StepMsg{Step: step, State: state, Err: err})
}

// ChildExited forwards a child exit to the program.
func (t *TUI) ChildExited(name string, exitCode int, err error) {
	_ = t.sendIfAvailable(events.ChildExitedMsg{Name: name, ExitCode: exitCode, Err: err})
}

// LaunchDone forwards the launch result to the program.
func (t *TUI) LaunchDone(err error) {
	_ = t.sendIfAvailable(events.LaunchDoneMsg{Err: err})
}

func (t *TUI) sendIfAvailable(msg tea.Msg) error {
	if !t.Available() {
		return ErrSurfaceUnavailable
	}
	return t.send(context.Background(), msg)
}

// send delivers msg without letting a wedged program block the caller past ctx.
func (t *TUI) send(ctx context.Context, msg tea.Msg) error {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()
	if program == nil {
		return ErrSurfaceUnavailable
	}

	sent := make(chan struct{})
	go func() {
		program.Send(msg)
		close(sent)
	}()

	select {
	case <-sent:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
