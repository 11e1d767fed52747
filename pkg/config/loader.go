package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// envKeys are the keys that may be overridden with TANDEM_* variables even
// when no config file mentions them.
var envKeys = []string{
	"root",
	"environment.path",
	"backend.command",
	"backend.dir",
	"backend.output",
	"frontend.command",
	"frontend.dir",
	"frontend.output",
	"readiness.grace_delay",
	"readiness.probe.enabled",
	"readiness.probe.kind",
	"readiness.probe.address",
	"readiness.probe.interval",
	"readiness.probe.timeout",
	"navigation.url",
	"supervision.terminate_on_exit",
	"supervision.stop_grace",
	"logging.level",
	"logging.file",
	"ui.surface",
}

// Load loads configuration from file with the following priority:
// 1. Explicit path via configPath parameter
// 2. ./tandem.yaml (current directory)
// 3. ./config/tandem.yaml
// 4. ~/.tandem/tandem.yaml (user home)
// 5. /etc/tandem/tandem.yaml (system-wide)
// Falls back to defaults if no config file is found
func Load(configPath string, logger zerolog.Logger) (*Config, error) {
	v := viper.New()

	v.SetConfigName("tandem")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tandem"))
		}
		v.AddConfigPath("/etc/tandem")
	}

	// Example: TANDEM_NAVIGATION_URL=http://localhost:3000
	v.SetEnvPrefix("TANDEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "binding env for %s", key)
		}
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config file")
		}
		logger.Debug().
			Str("searchPaths", "., ./config, ~/.tandem, /etc/tandem").
			Msg("No config file found in search paths, using defaults")
	} else {
		configFileUsed = v.ConfigFileUsed()
		logger.Debug().Str("configFile", configFileUsed).Msg("Config file loaded")
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}

	applyInheritance(cfg)

	logger.Info().
		Bool("configFileFound", configFileUsed != "").
		Str("configFile", configFileUsed).
		Str("root", cfg.Root).
		Interface("backend", cfg.Backend).
		Interface("frontend", cfg.Frontend).
		Interface("readiness", cfg.Readiness).
		Str("url", cfg.Navigation.URL).
		Interface("supervision", cfg.Supervision).
		Str("surface", cfg.UI.Surface).
		Msg("Complete effective configuration")

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// applyInheritance fills values that default to other settings.
func applyInheritance(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Environment.Path == "" {
		cfg.Environment.Path = DefaultSearchPath
	}
	if cfg.Backend.Output == "" {
		cfg.Backend.Output = "discard"
	}
	if cfg.Frontend.Output == "" {
		cfg.Frontend.Output = "discard"
	}
	// The probe targets the navigation host:port unless told otherwise.
	if cfg.Readiness.Probe.Address == "" {
		if addr, err := hostPort(cfg.Navigation.URL); err == nil {
			cfg.Readiness.Probe.Address = addr
		}
	}
}
