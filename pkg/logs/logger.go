package logs

import (
	"io"
	"os"
	"strings"

	"github.com/bjartek/tandem/pkg/config"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// NewLogger creates a zerolog logger for the given logging config.
//
// With a non-nil sender, pretty console output goes to the TUI logs pane
// instead of stderr so it cannot break the display. When cfg.File is set,
// every entry is also appended to that file as JSON. The returned closer
// closes the file, if any.
func NewLogger(sender Sender, cfg config.LoggingConfig) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Logger{}, nil, errors.Wrapf(err, "parse log level %q", cfg.Level)
	}

	var out io.Writer = os.Stderr
	if sender != nil {
		out = NewLogWriter(sender)
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: cfg.TimestampFormat,
		NoColor:    !cfg.Color,
	}

	var closer io.Closer = nopCloser{}
	var writer io.Writer = consoleWriter
	if cfg.File != "" {
		logFile, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Logger{}, nil, errors.Wrapf(err, "open log file %s", cfg.File)
		}
		writer = zerolog.MultiLevelWriter(consoleWriter, logFile)
		closer = logFile
	}

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
