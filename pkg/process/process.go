package process

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/bjartek/tandem/pkg/env"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Output modes for a child's stdout and stderr.
const (
	OutputDiscard = "discard"
	OutputLog     = "log"
)

// Spec describes a child process to spawn.
type Spec struct {
	Name    string
	Command string
	Args    []string
	Dir     string
	Env     []string // PATH in here is used to resolve Command
	Output  string

	// OnExit is called once the process has been reaped.
	OnExit func(name string, exitCode int, err error)
}

// Process is a supervised child.
type Process interface {
	Name() string
	Pid() int
	Running() bool
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	ExitErr() error
	ListeningPorts() ([]uint32, error)
	Stop() error
}

// Spawner starts child processes. An error from Spawn means the process
// never started; a process that starts and then fails is reported through
// Spec.OnExit instead.
type Spawner interface {
	Spawn(ctx context.Context, spec Spec) (Process, error)
}

// ExecSpawner starts real OS processes.
type ExecSpawner struct {
	fs        afero.Fs
	logger    zerolog.Logger
	stopGrace time.Duration
}

func NewExecSpawner(fs afero.Fs, logger zerolog.Logger, stopGrace time.Duration) *ExecSpawner {
	return &ExecSpawner{
		fs:        fs,
		logger:    logger,
		stopGrace: stopGrace,
	}
}

// Resolve returns the absolute executable spec would run.
func (s *ExecSpawner) Resolve(spec Spec) (string, error) {
	command := spec.Command
	if !filepath.IsAbs(command) && env.HasSeparator(command) {
		command = filepath.Join(spec.Dir, command)
	}

	searchPath, ok := env.Get(spec.Env, "PATH")
	if !ok {
		searchPath = os.Getenv("PATH")
	}
	return env.LookPath(s.fs, command, searchPath)
}

func (s *ExecSpawner) Spawn(ctx context.Context, spec Spec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("component", spec.Name).Logger()

	path, err := s.Resolve(spec)
	if err != nil {
		logger.Error().Err(err).Str("command", spec.Command).Msg("Failed to resolve command")
		return nil, err
	}

	cmd := exec.Command(path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	setupProcessGroup(cmd)

	if spec.Output == OutputLog {
		cmd.Stdout = newLineLogger(logger, "stdout")
		cmd.Stderr = newLineLogger(logger, "stderr")
	}

	logger.Info().
		Str("command", path).
		Strs("args", spec.Args).
		Str("dir", spec.Dir).
		Msg("Starting process")

	if err := cmd.Start(); err != nil {
		logger.Error().Err(err).Msg("Failed to start process")
		return nil, errors.Wrapf(err, "start %s", spec.Name)
	}

	c := &child{
		name:      spec.Name,
		cmd:       cmd,
		logger:    logger,
		stopGrace: s.stopGrace,
		running:   true,
		done:      make(chan struct{}),
	}
	go c.wait(spec.OnExit)

	logger.Info().Int("pid", cmd.Process.Pid).Msg("Process started")
	return c, nil
}

type child struct {
	name      string
	cmd       *exec.Cmd
	logger    zerolog.Logger
	stopGrace time.Duration

	mu      sync.Mutex
	running bool
	exitErr error
	done    chan struct{}
}

func (c *child) wait(onExit func(string, int, error)) {
	err := c.cmd.Wait()
	exitCode := 0

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			c.logger.Error().
				Int("exit_code", exitCode).
				Msg("Process exited with error")
		} else {
			exitCode = -1
			c.logger.Error().Err(err).Msg("Process exited with error")
		}
	} else {
		c.logger.Info().Msg("Process exited")
	}

	c.mu.Lock()
	c.running = false
	c.exitErr = err
	c.mu.Unlock()
	close(c.done)

	if onExit != nil {
		onExit(c.name, exitCode, err)
	}
}

func (c *child) Name() string {
	return c.name
}

func (c *child) Pid() int {
	return c.cmd.Process.Pid
}

func (c *child) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *child) Done() <-chan struct{} {
	return c.done
}

func (c *child) ExitErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitErr
}

func (c *child) ListeningPorts() ([]uint32, error) {
	if !c.Running() {
		return nil, nil
	}
	return listeningPorts(c.logger, c.Pid())
}

// Stop terminates the process and everything in its process group.
func (c *child) Stop() error {
	if !c.Running() {
		return nil
	}

	c.logger.Info().Int("pid", c.Pid()).Msg("Stopping process")
	if err := stopProcess(c.cmd, c.done, c.stopGrace); err != nil {
		c.logger.Error().Err(err).Msg("Failed to stop process")
		return err
	}
	<-c.done
	return nil
}
