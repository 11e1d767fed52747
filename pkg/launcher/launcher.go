// Package launcher starts the backend and frontend processes and points the
// UI surface at the frontend once it is ready.
package launcher

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/bjartek/tandem/pkg/config"
	"github.com/bjartek/tandem/pkg/env"
	"github.com/bjartek/tandem/pkg/events"
	"github.com/bjartek/tandem/pkg/process"
	"github.com/bjartek/tandem/pkg/readiness"
	"github.com/bjartek/tandem/pkg/surface"
	"github.com/cockroachdb/errors"
	"github.com/enescakir/emoji"
	"github.com/rs/zerolog"
)

// ErrAlreadyLaunched is returned by a second call to Launch.
var ErrAlreadyLaunched = errors.New("launch already attempted")

// Observer is told about launch progress, typically to render it.
type Observer interface {
	Step(step events.Step, state events.StepState, err error)
	ChildExited(name string, exitCode int, err error)
	LaunchDone(err error)
}

// ProbeFactory builds the readiness probe for a spawned frontend.
type ProbeFactory func(cfg config.ProbeConfig, frontend process.Process) (readiness.Probe, error)

type Launcher struct {
	cfg       *config.Config
	spawner   process.Spawner
	navigator surface.Navigator
	logger    zerolog.Logger

	sleep    readiness.Sleeper
	observer Observer
	baseEnv  []string
	newProbe ProbeFactory

	mu       sync.Mutex
	launched bool
	env      []string
	children []process.Process
}

type Option func(*Launcher)

// WithSleeper replaces the sleeper used for the grace delay.
func WithSleeper(sleep readiness.Sleeper) Option {
	return func(l *Launcher) {
		l.sleep = sleep
	}
}

func WithObserver(o Observer) Option {
	return func(l *Launcher) {
		l.observer = o
	}
}

// WithBaseEnv sets the environment the child environment is derived from.
// Defaults to os.Environ().
func WithBaseEnv(base []string) Option {
	return func(l *Launcher) {
		l.baseEnv = base
	}
}

func WithProbeFactory(f ProbeFactory) Option {
	return func(l *Launcher) {
		l.newProbe = f
	}
}

func New(cfg *config.Config, spawner process.Spawner, navigator surface.Navigator, logger zerolog.Logger, opts ...Option) *Launcher {
	l := &Launcher{
		cfg:       cfg,
		spawner:   spawner,
		navigator: navigator,
		logger:    logger.With().Str("component", "launcher").Logger(),
		sleep:     readiness.Sleep,
		observer:  nopObserver{},
		newProbe:  DefaultProbe,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.baseEnv == nil {
		l.baseEnv = os.Environ()
	}
	return l
}

// DefaultProbe builds a dial or listen probe from cfg.
func DefaultProbe(cfg config.ProbeConfig, frontend process.Process) (readiness.Probe, error) {
	switch cfg.Kind {
	case "listen":
		probe, err := readiness.NewListenProbe(frontend, cfg.Address)
		if err != nil {
			return nil, err
		}
		return probe, nil
	case "dial", "":
		return readiness.DialProbe{Address: cfg.Address}, nil
	default:
		return nil, errors.Newf("unknown probe kind %q", cfg.Kind)
	}
}

// Launch runs the launch sequence once. Every failure aborts the sequence;
// the returned error is a *LaunchError except for context cancellation.
func (l *Launcher) Launch(ctx context.Context) (err error) {
	l.mu.Lock()
	if l.launched {
		l.mu.Unlock()
		return ErrAlreadyLaunched
	}
	l.launched = true
	l.mu.Unlock()

	defer func() {
		if err != nil {
			l.logger.Error().Err(err).Msgf("%v Launch aborted", emoji.CrossMark)
		}
		l.observer.LaunchDone(err)
	}()

	l.begin(events.StepEnvironment)
	childEnv := env.Build(l.baseEnv, l.cfg.Environment.Path, l.cfg.Environment.Vars)
	l.mu.Lock()
	l.env = childEnv
	l.mu.Unlock()
	l.logger.Debug().Str("PATH", l.cfg.Environment.Path).Msg("Child environment prepared")
	l.finish(events.StepEnvironment, nil)

	l.begin(events.StepBackend)
	backend, err := l.spawn(ctx, "backend", l.cfg.Backend, childEnv)
	if err != nil {
		l.finish(events.StepBackend, err)
		return &LaunchError{Kind: KindBackendSpawnFailed, Err: err}
	}
	l.finish(events.StepBackend, nil)

	l.begin(events.StepFrontend)
	frontend, err := l.spawn(ctx, "frontend", l.cfg.Frontend, childEnv)
	if err != nil {
		l.finish(events.StepFrontend, err)
		l.abandon(backend)
		return &LaunchError{Kind: KindFrontendSpawnFailed, Err: err}
	}
	l.finish(events.StepFrontend, nil)

	l.begin(events.StepGrace)
	l.logger.Info().Dur("delay", l.cfg.Readiness.GraceDelay).Msgf("%v Waiting for frontend", emoji.HourglassNotDone)
	if err := l.sleep(ctx, l.cfg.Readiness.GraceDelay); err != nil {
		l.finish(events.StepGrace, err)
		return errors.Wrap(err, "grace delay interrupted")
	}
	l.finish(events.StepGrace, nil)

	if err := l.awaitReady(ctx, frontend); err != nil {
		return err
	}

	l.begin(events.StepNavigate)
	if err := l.navigate(ctx); err != nil {
		l.finish(events.StepNavigate, err)
		return &LaunchError{Kind: KindNavigationFailed, Err: err}
	}
	l.finish(events.StepNavigate, nil)

	l.logger.Info().Str("url", l.cfg.Navigation.URL).Msgf("%v Launch complete", emoji.Rocket)
	return nil
}

func (l *Launcher) spawn(ctx context.Context, name string, pc config.ProcessConfig, childEnv []string) (process.Process, error) {
	p, err := l.spawner.Spawn(ctx, process.Spec{
		Name:    name,
		Command: pc.Command,
		Args:    pc.Args,
		Dir:     l.cfg.ResolveDir(pc.Dir),
		Env:     childEnv,
		Output:  pc.Output,
		OnExit:  l.childExited,
	})
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.children = append(l.children, p)
	l.mu.Unlock()

	l.logger.Info().Str("child", name).Int("pid", p.Pid()).Msgf("%v Started %s", emoji.CheckMarkButton, name)
	return p, nil
}

func (l *Launcher) awaitReady(ctx context.Context, frontend process.Process) error {
	probeCfg := l.cfg.Readiness.Probe
	if !probeCfg.Enabled {
		l.observer.Step(events.StepReadiness, events.StateSkipped, nil)
		return nil
	}

	l.begin(events.StepReadiness)
	probe, err := l.newProbe(probeCfg, frontend)
	if err != nil {
		l.finish(events.StepReadiness, err)
		return errors.Wrap(err, "build readiness probe")
	}

	start := time.Now()
	if err := readiness.Wait(ctx, probe, probeCfg.Interval, probeCfg.Timeout); err != nil {
		l.finish(events.StepReadiness, err)
		if errors.Is(err, readiness.ErrTimeout) {
			return &LaunchError{Kind: KindReadinessTimeout, Err: err}
		}
		return err
	}
	l.logger.Info().Str("probe", probe.String()).Dur("waited", time.Since(start)).Msg("Frontend ready")
	l.finish(events.StepReadiness, nil)
	return nil
}

func (l *Launcher) navigate(ctx context.Context) (err error) {
	if l.navigator == nil {
		return surface.ErrSurfaceUnavailable
	}
	// A surface that panics is reported like any other failed navigation.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("navigation panicked: %v", r)
		}
	}()
	return l.navigator.Navigate(ctx, l.cfg.Navigation.URL)
}

// abandon stops a child spawned earlier in a launch that has since failed,
// unless children are configured to outlive tandem.
func (l *Launcher) abandon(p process.Process) {
	if !l.cfg.Supervision.TerminateOnExit {
		return
	}
	if err := p.Stop(); err != nil {
		l.logger.Warn().Err(err).Str("child", p.Name()).Msg("Failed to stop child after aborted launch")
	}
}

func (l *Launcher) childExited(name string, exitCode int, err error) {
	l.logger.Warn().Str("child", name).Int("exit_code", exitCode).AnErr("exit_error", err).Msgf("%v Child process exited", emoji.Warning)
	l.observer.ChildExited(name, exitCode, err)
}

// Env returns the environment handed to the children, or nil before Launch.
func (l *Launcher) Env() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.env...)
}

// Children returns every child spawned so far, in spawn order.
func (l *Launcher) Children() []process.Process {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]process.Process(nil), l.children...)
}

// Shutdown stops running children in reverse spawn order when
// supervision.terminate_on_exit is set; otherwise they are left running.
func (l *Launcher) Shutdown() error {
	children := l.Children()

	if !l.cfg.Supervision.TerminateOnExit {
		for _, c := range children {
			if c.Running() {
				l.logger.Info().Str("child", c.Name()).Int("pid", c.Pid()).Msg("Leaving child running")
			}
		}
		return nil
	}

	var result error
	for i := len(children) - 1; i >= 0; i-- {
		c := children[i]
		if !c.Running() {
			continue
		}
		if err := c.Stop(); err != nil {
			result = errors.CombineErrors(result, errors.Wrapf(err, "stop %s", c.Name()))
		}
	}
	return result
}

func (l *Launcher) begin(step events.Step) {
	l.observer.Step(step, events.StateRunning, nil)
}

func (l *Launcher) finish(step events.Step, err error) {
	if err != nil {
		l.observer.Step(step, events.StateFailed, err)
		return
	}
	l.observer.Step(step, events.StateDone, nil)
}

type nopObserver struct{}

func (nopObserver) Step(events.Step, events.StepState, error) {}
func (nopObserver) ChildExited(string, int, error)            {}
func (nopObserver) LaunchDone(error)                          {}
