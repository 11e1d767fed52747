package surface

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bjartek/tandem/pkg/events"
	"github.com/cockroachdb/errors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) all() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

// blockingSender never returns from Send, like a program that stopped reading.
type blockingSender struct{}

func (blockingSender) Send(tea.Msg) { select {} }

func TestTUIUnavailableUntilReady(t *testing.T) {
	tui := NewTUI()
	ctx := context.Background()

	err := tui.Navigate(ctx, "http://localhost:8080")
	assert.True(t, errors.Is(err, ErrSurfaceUnavailable), "no program attached")

	sender := &recordingSender{}
	tui.Attach(sender)
	err = tui.Navigate(ctx, "http://localhost:8080")
	assert.True(t, errors.Is(err, ErrSurfaceUnavailable), "model not initialized")

	tui.MarkReady()
	require.NoError(t, tui.Navigate(ctx, "http://localhost:8080"))
	assert.Equal(t, []tea.Msg{events.NavigateMsg{URL: "http://localhost:8080"}}, sender.all())

	tui.Detach()
	err = tui.Navigate(ctx, "http://localhost:8080")
	assert.True(t, errors.Is(err, ErrSurfaceUnavailable), "detached")
}

func TestTUIMarkReadyWithoutProgram(t *testing.T) {
	tui := NewTUI()
	tui.MarkReady()
	assert.False(t, tui.Available())
}

func TestTUINavigateDoesNotHang(t *testing.T) {
	tui := NewTUI()
	tui.Attach(blockingSender{})
	tui.MarkReady()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tui.Navigate(ctx, "http://localhost:8080")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTUIObserverMessages(t *testing.T) {
	tui := NewTUI()

	// dropped while unavailable
	tui.Step(events.StepBackend, events.StateRunning, nil)

	sender := &recordingSender{}
	tui.Attach(sender)
	tui.MarkReady()

	tui.Step(events.StepBackend, events.StateDone, nil)
	tui.ChildExited("backend", 1, errors.New("exit status 1"))
	tui.LaunchDone(nil)

	msgs := sender.all()
	require.Len(t, msgs, 3)
	assert.Equal(t, events.StepMsg{Step: events.StepBackend, State: events.StateDone}, msgs[0])
	assert.IsType(t, events.ChildExitedMsg{}, msgs[1])
	assert.Equal(t, events.LaunchDoneMsg{}, msgs[2])
}

func TestBrowserNavigate(t *testing.T) {
	var opened []string
	b := NewBrowser(zerolog.Nop())
	b.open = func(url string) error {
		opened = append(opened, url)
		return nil
	}

	require.NoError(t, b.Navigate(context.Background(), "http://localhost:8080"))
	assert.Equal(t, []string{"http://localhost:8080"}, opened)

	b.open = func(string) error { return errors.New("xdg-open: not found") }
	err := b.Navigate(context.Background(), "http://localhost:8080")
	assert.ErrorContains(t, err, "xdg-open")

	b.open = nil
	assert.True(t, errors.Is(b.Navigate(context.Background(), "http://localhost:8080"), ErrSurfaceUnavailable))
}

func TestHeadlessNavigate(t *testing.T) {
	h := NewHeadless(zerolog.Nop())
	assert.NoError(t, h.Navigate(context.Background(), "http://localhost:8080"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Navigate(ctx, "http://localhost:8080"), context.Canceled)
}

func TestTUIWaitReady(t *testing.T) {
	tui := NewTUI()
	tui.Attach(&recordingSender{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tui.WaitReady(ctx), context.DeadlineExceeded)

	tui.MarkReady()
	tui.MarkReady()
	require.NoError(t, tui.WaitReady(context.Background()))

	// a new program has to initialize again
	tui.Attach(&recordingSender{})
	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tui.WaitReady(ctx), context.DeadlineExceeded)
}
