package config

import "time"

// DefaultSearchPath is the PATH given to children when none is configured.
const DefaultSearchPath = "/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin"

// DefaultURL is where the UI surface is sent once the frontend is up.
const DefaultURL = "http://localhost:8080"

// DefaultConfig returns a Config matching the layout of the accounting tool:
// a Flask backend in ./backend and a Vue dev server in ./web_frontend.
func DefaultConfig() *Config {
	return &Config{
		Root: ".",
		Environment: EnvironmentConfig{
			Path: DefaultSearchPath,
			Vars: map[string]string{},
		},
		Backend: ProcessConfig{
			Command: "/usr/bin/python3",
			Args:    []string{"app.py"},
			Dir:     "backend",
			Output:  "discard",
		},
		Frontend: ProcessConfig{
			Command: "/usr/local/bin/npm",
			Args:    []string{"run", "serve"},
			Dir:     "web_frontend",
			Output:  "discard",
		},
		Readiness: ReadinessConfig{
			GraceDelay: 3 * time.Second,
			Probe: ProbeConfig{
				Enabled:  true,
				Kind:     "dial",
				Address:  "localhost:8080",
				Interval: 250 * time.Millisecond,
				Timeout:  30 * time.Second,
			},
		},
		Navigation: NavigationConfig{
			URL: DefaultURL,
		},
		Supervision: SupervisionConfig{
			TerminateOnExit: true,
			StopGrace:       250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:           "info",
			File:            "", // no file
			TimestampFormat: "15:04:05",
			Color:           true,
		},
		UI: UIConfig{
			Surface:     "tui",
			MaxLogLines: 10000,
		},
	}
}
