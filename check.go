package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/enescakir/emoji"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bjartek/tandem/pkg/config"
	"github.com/bjartek/tandem/pkg/env"
	"github.com/bjartek/tandem/pkg/logs"
	"github.com/bjartek/tandem/pkg/process"
)

func newCheckCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print what would be started",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return runCheck(cmd, afero.NewOsFs(), cfg)
		},
	}
}

func runCheck(cmd *cobra.Command, fs afero.Fs, cfg *config.Config) error {
	logger, closer, err := logs.NewLogger(nil, cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	out := cmd.OutOrStdout()
	var result error

	if err := config.ValidatePaths(fs, cfg); err != nil {
		result = errors.CombineErrors(result, err)
	}

	childEnv := env.Build(os.Environ(), cfg.Environment.Path, cfg.Environment.Vars)
	spawner := process.NewExecSpawner(fs, logger, cfg.Supervision.StopGrace)

	fmt.Fprintf(out, "PATH for children: %s\n", cfg.Environment.Path)
	for _, child := range []struct {
		name string
		pc   config.ProcessConfig
	}{
		{"backend", cfg.Backend},
		{"frontend", cfg.Frontend},
	} {
		dir := cfg.ResolveDir(child.pc.Dir)
		path, err := spawner.Resolve(process.Spec{
			Name:    child.name,
			Command: child.pc.Command,
			Dir:     dir,
			Env:     childEnv,
		})
		if err != nil {
			fmt.Fprintf(out, "%v %-8s %s: %v\n", emoji.CrossMark, child.name, child.pc.Command, err)
			result = errors.CombineErrors(result, errors.Wrapf(err, "%s command", child.name))
			continue
		}
		fmt.Fprintf(out, "%v %-8s %s %s (in %s)\n", emoji.CheckMarkButton, child.name, path, strings.Join(child.pc.Args, " "), dir)
	}

	probe := "disabled"
	if cfg.Readiness.Probe.Enabled {
		probe = fmt.Sprintf("%s %s every %s for up to %s",
			cfg.Readiness.Probe.Kind, cfg.Readiness.Probe.Address,
			cfg.Readiness.Probe.Interval, cfg.Readiness.Probe.Timeout)
	}
	fmt.Fprintf(out, "Grace delay: %s\n", cfg.Readiness.GraceDelay)
	fmt.Fprintf(out, "Readiness probe: %s\n", probe)
	fmt.Fprintf(out, "Navigate %s on %s\n", cfg.Navigation.URL, cfg.UI.Surface)

	return result
}
