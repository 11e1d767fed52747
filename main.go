package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bjartek/tandem/pkg/config"
)

var (
	version = "dev"
	commit  = "none"
)

type rootFlags struct {
	configPath string
	surface    string
	logLevel   string
}

func main() {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "tandem",
		Short: "Start a backend and a frontend together and open the frontend",
		Long: `tandem starts the backend and frontend processes of a local web application,
waits for the frontend to come up and then shows it.

Settings are read from tandem.yaml and TANDEM_* environment variables.`,
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to tandem.yaml")
	rootCmd.PersistentFlags().StringVar(&flags.surface, "surface", "", "Surface to show the frontend on: tui, browser or headless")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newCheckCommand(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the configuration and applies command line overrides.
func (f *rootFlags) load() (*config.Config, error) {
	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(zerolog.WarnLevel).
		With().
		Timestamp().
		Logger()

	cfg, err := config.Load(f.configPath, bootstrap)
	if err != nil {
		return nil, err
	}
	if f.surface != "" {
		cfg.UI.Surface = f.surface
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	return cfg, nil
}
