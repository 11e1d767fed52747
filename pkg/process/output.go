package process

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// lineLogger is an io.Writer that logs every complete line it receives.
type lineLogger struct {
	logger zerolog.Logger
	stream string

	mu     sync.Mutex
	buffer bytes.Buffer
}

func newLineLogger(logger zerolog.Logger, stream string) *lineLogger {
	return &lineLogger{logger: logger, stream: stream}
}

func (w *lineLogger) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer.Write(p)
	for {
		data := w.buffer.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimRight(data[:i], "\r"))
		w.buffer.Next(i + 1)

		if w.stream == "stderr" {
			w.logger.Warn().Str("stream", w.stream).Msg(line)
		} else {
			w.logger.Info().Str("stream", w.stream).Msg(line)
		}
	}
	return len(p), nil
}
