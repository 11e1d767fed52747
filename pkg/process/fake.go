package process

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// FakeSpawner is a test Spawner that records every spec and hands out
// FakeProcesses instead of starting anything.
type FakeSpawner struct {
	mu        sync.Mutex
	failures  map[string]error
	ports     map[string][]uint32
	specs     []Spec
	processes map[string]*FakeProcess
	nextPid   int
}

func NewFakeSpawner() *FakeSpawner {
	return &FakeSpawner{
		failures:  make(map[string]error),
		ports:     make(map[string][]uint32),
		processes: make(map[string]*FakeProcess),
		nextPid:   1000,
	}
}

// FailSpawn makes spawning the named child return err.
func (s *FakeSpawner) FailSpawn(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[name] = err
}

// SetPorts sets the listening ports the named child will report.
func (s *FakeSpawner) SetPorts(name string, ports ...uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ports[name] = ports
	if p, ok := s.processes[name]; ok {
		p.setPorts(ports)
	}
}

func (s *FakeSpawner) Spawn(ctx context.Context, spec Spec) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.specs = append(s.specs, spec)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.failures[spec.Name]; ok {
		return nil, errors.Wrapf(err, "start %s", spec.Name)
	}

	s.nextPid++
	p := &FakeProcess{
		name:    spec.Name,
		pid:     s.nextPid,
		running: true,
		ports:   s.ports[spec.Name],
		done:    make(chan struct{}),
		onExit:  spec.OnExit,
	}
	s.processes[spec.Name] = p
	return p, nil
}

// Specs returns every spec passed to Spawn, in order.
func (s *FakeSpawner) Specs() []Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Spec(nil), s.specs...)
}

// Process returns the fake spawned under name, or nil.
func (s *FakeSpawner) Process(name string) *FakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processes[name]
}

// FakeProcess is the Process handed out by FakeSpawner.
type FakeProcess struct {
	name   string
	pid    int
	onExit func(string, int, error)

	mu      sync.Mutex
	running bool
	stopped bool
	ports   []uint32
	exitErr error
	done    chan struct{}
}

func (p *FakeProcess) Name() string { return p.name }
func (p *FakeProcess) Pid() int     { return p.pid }

func (p *FakeProcess) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *FakeProcess) Done() <-chan struct{} { return p.done }

func (p *FakeProcess) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

func (p *FakeProcess) ListeningPorts() ([]uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ports, nil
}

func (p *FakeProcess) setPorts(ports []uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ports = ports
}

// Stop marks the process as stopped.
func (p *FakeProcess) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()
	p.Exit(-1, errors.New("signal: terminated"))
	return nil
}

// Stopped reports whether Stop was called while the process was running.
func (p *FakeProcess) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Exit simulates the process exiting on its own.
func (p *FakeProcess) Exit(code int, err error) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.exitErr = err
	close(p.done)
	p.mu.Unlock()

	if p.onExit != nil {
		p.onExit(p.name, code, err)
	}
}
