package config

import (
	"net"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// validate validates the configuration
func validate(cfg *Config) error {
	if err := validateProcess("backend", cfg.Backend); err != nil {
		return err
	}
	if err := validateProcess("frontend", cfg.Frontend); err != nil {
		return err
	}

	if cfg.Environment.Path == "" {
		return errors.New("environment.path must not be empty")
	}

	if err := validateReadiness(cfg.Readiness); err != nil {
		return err
	}

	if _, err := hostPort(cfg.Navigation.URL); err != nil {
		return err
	}

	if cfg.Supervision.StopGrace < 0 {
		return errors.New("supervision.stop_grace must not be negative")
	}

	if err := validateLogLevel(cfg.Logging.Level); err != nil {
		return err
	}

	return validateUI(cfg.UI)
}

func validateProcess(name string, p ProcessConfig) error {
	if strings.TrimSpace(p.Command) == "" {
		return errors.Newf("%s.command must not be empty", name)
	}
	if strings.ContainsAny(p.Command, "\"'") {
		return errors.Newf("invalid %s.command %s: must not be quoted, put arguments in %s.args", name, p.Command, name)
	}
	switch p.Output {
	case "discard", "log":
	default:
		return errors.Newf("invalid %s.output '%s': must be one of: discard, log", name, p.Output)
	}
	return nil
}

func validateReadiness(r ReadinessConfig) error {
	if r.GraceDelay < 0 {
		return errors.New("readiness.grace_delay must not be negative")
	}
	if !r.Probe.Enabled {
		return nil
	}
	switch r.Probe.Kind {
	case "dial", "listen":
	default:
		return errors.Newf("invalid readiness.probe.kind '%s': must be one of: dial, listen", r.Probe.Kind)
	}
	if _, _, err := net.SplitHostPort(r.Probe.Address); err != nil {
		return errors.Wrapf(err, "invalid readiness.probe.address '%s'", r.Probe.Address)
	}
	if r.Probe.Interval <= 0 {
		return errors.New("readiness.probe.interval must be positive")
	}
	if r.Probe.Timeout <= 0 {
		return errors.New("readiness.probe.timeout must be positive")
	}
	return nil
}

// hostPort checks that raw is a bare scheme://host:port address and returns
// its host:port.
func hostPort(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "invalid navigation.url '%s'", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.Newf("invalid navigation.url '%s': scheme must be http or https", raw)
	}
	if u.Port() == "" || u.Hostname() == "" {
		return "", errors.Newf("invalid navigation.url '%s': must include host and port", raw)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return "", errors.Newf("invalid navigation.url '%s': must not carry a path, query, fragment or user", raw)
	}
	return u.Host, nil
}

func validateLogLevel(level string) error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return errors.Newf("invalid log level '%s': must be one of: trace, debug, info, warn, error, fatal", level)
	}
	return nil
}

func validateUI(ui UIConfig) error {
	switch ui.Surface {
	case "tui", "browser", "headless":
	default:
		return errors.Newf("invalid ui.surface '%s': must be one of: tui, browser, headless", ui.Surface)
	}
	if ui.MaxLogLines < 1 {
		return errors.New("ui.max_log_lines must be at least 1")
	}
	return nil
}

// ValidatePaths checks that both working directories exist on fs.
func ValidatePaths(fs afero.Fs, cfg *Config) error {
	for name, dir := range map[string]string{
		"backend":  cfg.ResolveDir(cfg.Backend.Dir),
		"frontend": cfg.ResolveDir(cfg.Frontend.Dir),
	} {
		ok, err := afero.DirExists(fs, dir)
		if err != nil {
			return errors.Wrapf(err, "checking %s dir", name)
		}
		if !ok {
			return errors.Newf("%s dir %s does not exist", name, dir)
		}
	}
	return nil
}
