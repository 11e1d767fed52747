package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/enescakir/emoji"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/bjartek/tandem/pkg/config"
	"github.com/bjartek/tandem/pkg/launcher"
	"github.com/bjartek/tandem/pkg/logs"
	"github.com/bjartek/tandem/pkg/process"
	"github.com/bjartek/tandem/pkg/surface"
	"github.com/bjartek/tandem/pkg/ui"
)

// runner wires config, spawner and surface together for one launch.
type runner struct {
	newSpawner     func(cfg *config.Config, logger zerolog.Logger) process.Spawner
	programOptions []tea.ProgramOption
}

func newRunner() *runner {
	return &runner{
		newSpawner: func(cfg *config.Config, logger zerolog.Logger) process.Spawner {
			return process.NewExecSpawner(afero.NewOsFs(), logger, cfg.Supervision.StopGrace)
		},
		programOptions: []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := newRunner()
	switch cfg.UI.Surface {
	case "tui":
		return r.runTUI(ctx, cfg)
	case "browser", "headless":
		return r.runPlain(ctx, cfg)
	default:
		return errors.Newf("unknown surface %q", cfg.UI.Surface)
	}
}

func (r *runner) newLauncher(cfg *config.Config, nav surface.Navigator, logger zerolog.Logger, opts ...launcher.Option) *launcher.Launcher {
	return launcher.New(cfg, r.newSpawner(cfg, logger), nav, logger, opts...)
}

func (r *runner) runTUI(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tui := surface.NewTUI()
	var opener *surface.Browser

	model := ui.NewModel(
		ui.WithOnReady(tui.MarkReady),
		ui.WithMaxLogLines(cfg.UI.MaxLogLines),
		ui.WithOpener(func(url string) error {
			return opener.Navigate(context.Background(), url)
		}),
	)
	p := tea.NewProgram(model, r.programOptions...)

	logger, closer, err := logs.NewLogger(p, cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	opener = surface.NewBrowser(logger)
	tui.Attach(p)

	l := r.newLauncher(cfg, tui, logger, launcher.WithObserver(tui))

	launchErr := make(chan error, 1)
	go func() {
		// progress sent before the model is up would be lost
		if err := tui.WaitReady(ctx); err != nil {
			launchErr <- err
			return
		}
		err := l.Launch(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			p.Quit()
		}
		launchErr <- err
	}()

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	tui.Detach()
	cancel()

	err = <-launchErr
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	logger.Info().Msg("Shutting down")
	if shutdownErr := l.Shutdown(); shutdownErr != nil {
		logger.Error().Err(shutdownErr).Msg("Failed to stop children")
	}

	if runErr != nil {
		return errors.Wrap(runErr, "run ui")
	}
	return err
}

func (r *runner) runPlain(ctx context.Context, cfg *config.Config) error {
	logger, closer, err := logs.NewLogger(nil, cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	var nav surface.Navigator = surface.NewHeadless(logger)
	if cfg.UI.Surface == "browser" {
		nav = surface.NewBrowser(logger)
	}

	l := r.newLauncher(cfg, nav, logger)
	if err := l.Launch(ctx); err != nil {
		if shutdownErr := l.Shutdown(); shutdownErr != nil {
			logger.Error().Err(shutdownErr).Msg("Failed to stop children")
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	if !cfg.Supervision.TerminateOnExit {
		logger.Info().Msg("Children keep running after exit")
		return nil
	}

	logger.Info().Msgf("%v Press Ctrl+C to stop", emoji.Warning)
	waitForChildren(ctx, l.Children())

	logger.Info().Msg("Shutting down")
	return l.Shutdown()
}

// waitForChildren blocks until ctx is done or every child has exited.
func waitForChildren(ctx context.Context, children []process.Process) {
	for _, c := range children {
		select {
		case <-c.Done():
		case <-ctx.Done():
			return
		}
	}
}
