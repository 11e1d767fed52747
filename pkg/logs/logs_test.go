package logs

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bjartek/tandem/pkg/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.msgs {
		if l, ok := m.(LogLineMsg); ok {
			out = append(out, l.Line)
		}
	}
	return out
}

func TestLogWriterSplitsLines(t *testing.T) {
	sender := &recordingSender{}
	w := NewLogWriter(sender)

	n, err := w.Write([]byte("first\nsecond\nthi"))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, []string{"first", "second"}, sender.lines())

	_, err = w.Write([]byte("rd\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, sender.lines())
}

func TestNewLoggerSendsToProgramAndFile(t *testing.T) {
	sender := &recordingSender{}
	file := filepath.Join(t.TempDir(), "tandem.log")

	cfg := config.DefaultConfig().Logging
	cfg.File = file
	cfg.Color = false

	logger, closer, err := NewLogger(sender, cfg)
	require.NoError(t, err)

	logger.Info().Str("component", "launcher").Msg("Starting backend")
	logger.Debug().Msg("filtered out at info")
	require.NoError(t, closer.Close())

	lines := sender.lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Starting backend")
	assert.Contains(t, lines[0], "component=launcher")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Starting backend"`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.Level = "loud"

	_, _, err := NewLogger(nil, cfg)
	assert.Error(t, err)
}
