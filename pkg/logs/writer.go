package logs

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// LogLineMsg carries one formatted log line to the UI.
type LogLineMsg struct {
	Line string
}

// Sender is implemented by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// LogWriter is an io.Writer that sends complete log lines to a Bubble Tea program.
type LogWriter struct {
	sender Sender
	buffer bytes.Buffer
	mu     sync.Mutex
}

// NewLogWriter creates a new log writer that sends lines to sender.
func NewLogWriter(sender Sender) *LogWriter {
	return &LogWriter{
		sender: sender,
	}
}

// Write implements io.Writer. An incomplete trailing line is kept until the
// rest of it arrives.
func (w *LogWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.buffer.Write(p)
	if err != nil {
		return n, err
	}

	for {
		data := w.buffer.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := string(data[:i])
		w.buffer.Next(i + 1)
		if w.sender != nil {
			w.sender.Send(LogLineMsg{Line: line})
		}
	}

	return n, nil
}
