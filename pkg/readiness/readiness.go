// Package readiness decides when the frontend is ready to be navigated to.
package readiness

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrTimeout is returned by Wait when the probe never succeeded in time.
var ErrTimeout = errors.New("readiness probe timed out")

// Probe reports whether the frontend is accepting requests.
type Probe interface {
	Check(ctx context.Context) error
	String() string
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait polls probe every interval until it succeeds or timeout elapses. The
// first check happens immediately.
func Wait(ctx context.Context, probe Probe, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		lastErr := probe.Check(ctx)
		if lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errors.Wrapf(ErrTimeout, "%s not ready after %s (%d attempts, last error: %v)",
					probe, timeout, attempts, lastErr)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DialProbe succeeds once a TCP connection to Address can be opened.
type DialProbe struct {
	Address     string
	DialTimeout time.Duration
}

func (p DialProbe) Check(ctx context.Context) error {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (p DialProbe) String() string {
	return "dial " + p.Address
}

// PortLister is anything that can list the ports its process tree listens on.
type PortLister interface {
	ListeningPorts() ([]uint32, error)
}

// ListenProbe succeeds once the watched process tree holds Port in LISTEN
// state. Unlike DialProbe it cannot be fooled by an unrelated server that
// already owns the port.
type ListenProbe struct {
	Process PortLister
	Port    uint32
}

// NewListenProbe builds a ListenProbe for the port in address.
func NewListenProbe(p PortLister, address string) (*ListenProbe, error) {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, errors.Wrapf(err, "parse address %s", address)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, errors.Wrapf(err, "parse port %s", portStr)
	}
	return &ListenProbe{Process: p, Port: uint32(port)}, nil
}

func (p *ListenProbe) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ports, err := p.Process.ListeningPorts()
	if err != nil {
		return err
	}
	for _, port := range ports {
		if port == p.Port {
			return nil
		}
	}
	return errors.Newf("port %d not listening yet (listening: %v)", p.Port, ports)
}

func (p *ListenProbe) String() string {
	return "listen :" + strconv.FormatUint(uint64(p.Port), 10)
}
