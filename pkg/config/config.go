package config

import (
	"path/filepath"
	"time"
)

// Config represents the complete tandem configuration
type Config struct {
	Root        string            `mapstructure:"root"`
	Environment EnvironmentConfig `mapstructure:"environment"`
	Backend     ProcessConfig     `mapstructure:"backend"`
	Frontend    ProcessConfig     `mapstructure:"frontend"`
	Readiness   ReadinessConfig   `mapstructure:"readiness"`
	Navigation  NavigationConfig  `mapstructure:"navigation"`
	Supervision SupervisionConfig `mapstructure:"supervision"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	UI          UIConfig          `mapstructure:"ui"`
}

// EnvironmentConfig contains the environment handed to child processes
type EnvironmentConfig struct {
	Path string            `mapstructure:"path"` // replaces PATH for children
	Vars map[string]string `mapstructure:"vars"`
}

// ProcessConfig describes one child process
type ProcessConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	Dir     string   `mapstructure:"dir"`
	Output  string   `mapstructure:"output"` // discard | log
}

// ReadinessConfig contains the wait performed before navigation
type ReadinessConfig struct {
	GraceDelay time.Duration `mapstructure:"grace_delay"`
	Probe      ProbeConfig   `mapstructure:"probe"`
}

// ProbeConfig contains the bounded readiness poll settings
type ProbeConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Kind     string        `mapstructure:"kind"` // dial | listen
	Address  string        `mapstructure:"address"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// NavigationConfig contains the URL the UI surface is sent to
type NavigationConfig struct {
	URL string `mapstructure:"url"`
}

// SupervisionConfig decides what happens to children when tandem exits
type SupervisionConfig struct {
	TerminateOnExit bool          `mapstructure:"terminate_on_exit"`
	StopGrace       time.Duration `mapstructure:"stop_grace"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level           string `mapstructure:"level"`
	File            string `mapstructure:"file"`
	TimestampFormat string `mapstructure:"timestamp_format"`
	Color           bool   `mapstructure:"color"`
}

// UIConfig contains UI preferences
type UIConfig struct {
	Surface     string `mapstructure:"surface"` // tui | browser | headless
	MaxLogLines int    `mapstructure:"max_log_lines"`
}

// ResolveDir returns dir resolved against the configured root.
func (c *Config) ResolveDir(dir string) string {
	if dir == "" {
		return c.Root
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Root, dir)
}
