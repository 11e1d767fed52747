package readiness

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProbe struct {
	calls     atomic.Int32
	succeedAt int32
}

func (p *countingProbe) Check(context.Context) error {
	if p.calls.Add(1) >= p.succeedAt {
		return nil
	}
	return errors.New("connection refused")
}

func (p *countingProbe) String() string { return "counting" }

type staticPorts []uint32

func (s staticPorts) ListeningPorts() ([]uint32, error) { return s, nil }

func TestWaitSucceedsAfterRetries(t *testing.T) {
	probe := &countingProbe{succeedAt: 3}

	err := Wait(context.Background(), probe, time.Millisecond, time.Second)

	require.NoError(t, err)
	assert.Equal(t, int32(3), probe.calls.Load())
}

func TestWaitTimesOut(t *testing.T) {
	probe := &countingProbe{succeedAt: 1 << 30}

	err := Wait(context.Background(), probe, 5*time.Millisecond, 30*time.Millisecond)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Greater(t, probe.calls.Load(), int32(1))
}

func TestWaitHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, &countingProbe{succeedAt: 1 << 30}, time.Millisecond, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestDialProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	probe := DialProbe{Address: addr}
	assert.NoError(t, probe.Check(context.Background()))

	require.NoError(t, ln.Close())
	assert.Error(t, probe.Check(context.Background()))
	assert.Equal(t, "dial "+addr, probe.String())
}

func TestListenProbe(t *testing.T) {
	probe, err := NewListenProbe(staticPorts{5000}, "localhost:8080")
	require.NoError(t, err)
	assert.Error(t, probe.Check(context.Background()))

	probe.Process = staticPorts{5000, 8080}
	assert.NoError(t, probe.Check(context.Background()))
	assert.Equal(t, "listen :8080", probe.String())

	_, err = NewListenProbe(staticPorts{}, "localhost")
	assert.Error(t, err)
}

func TestSleep(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
