//go:build !windows

package process

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bjartek/tandem/pkg/env"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPath = "/usr/bin:/bin"

type exitRecord struct {
	name string
	code int
	err  error
}

func newTestSpawner(buf *bytes.Buffer) *ExecSpawner {
	logger := zerolog.Nop()
	if buf != nil {
		logger = zerolog.New(buf)
	}
	return NewExecSpawner(afero.NewOsFs(), logger, 100*time.Millisecond)
}

func waitDone(t *testing.T, p Process) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("process %s did not exit", p.Name())
	}
}

func TestSpawnResolvesAgainstChildPath(t *testing.T) {
	exits := make(chan exitRecord, 1)
	s := newTestSpawner(nil)

	p, err := s.Spawn(context.Background(), Spec{
		Name:    "backend",
		Command: "true",
		Dir:     t.TempDir(),
		Env:     []string{"PATH=" + testPath},
		Output:  OutputDiscard,
		OnExit: func(name string, code int, err error) {
			exits <- exitRecord{name, code, err}
		},
	})
	require.NoError(t, err)
	assert.Greater(t, p.Pid(), 0)

	waitDone(t, p)
	got := <-exits
	assert.Equal(t, "backend", got.name)
	assert.Equal(t, 0, got.code)
	assert.NoError(t, got.err)
	assert.False(t, p.Running())
}

func TestSpawnSucceedsWhenProcessLaterFails(t *testing.T) {
	exits := make(chan exitRecord, 1)
	s := newTestSpawner(nil)

	p, err := s.Spawn(context.Background(), Spec{
		Name:    "backend",
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
		Dir:     t.TempDir(),
		Env:     []string{"PATH=" + testPath},
		OnExit: func(name string, code int, err error) {
			exits <- exitRecord{name, code, err}
		},
	})
	require.NoError(t, err, "a non-zero exit is not a spawn failure")

	waitDone(t, p)
	got := <-exits
	assert.Equal(t, 3, got.code)
	assert.Error(t, got.err)
	assert.Error(t, p.ExitErr())
}

func TestSpawnMissingExecutable(t *testing.T) {
	s := newTestSpawner(nil)

	_, err := s.Spawn(context.Background(), Spec{
		Name:    "backend",
		Command: "definitely-not-a-python",
		Dir:     t.TempDir(),
		Env:     []string{"PATH=" + testPath},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, env.ErrNotFound))
}

func TestResolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/usr/local/bin/npm", []byte("#!"), 0755))
	require.NoError(t, afero.WriteFile(fs, "/app/backend/venv/bin/python3", []byte("#!"), 0755))
	s := NewExecSpawner(fs, zerolog.Nop(), time.Second)
	childEnv := []string{"PATH=/usr/local/bin:/usr/bin"}

	tests := map[string]struct {
		command string
		want    string
		wantErr bool
	}{
		"bare name on child path":     {command: "npm", want: "/usr/local/bin/npm"},
		"absolute":                    {command: "/usr/local/bin/npm", want: "/usr/local/bin/npm"},
		"relative to working dir":     {command: "venv/bin/python3", want: "/app/backend/venv/bin/python3"},
		"quotes are part of the name": {command: `"/usr/local/bin/npm"`, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := s.Resolve(Spec{Command: tt.command, Dir: "/app/backend", Env: childEnv})
			if tt.wantErr {
				assert.True(t, errors.Is(err, env.ErrNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpawnMissingDir(t *testing.T) {
	s := newTestSpawner(nil)

	_, err := s.Spawn(context.Background(), Spec{
		Name:    "frontend",
		Command: "true",
		Dir:     "/nonexistent/web_frontend",
		Env:     []string{"PATH=" + testPath},
	})
	assert.Error(t, err)
}

func TestSpawnCanceledContext(t *testing.T) {
	s := newTestSpawner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Spawn(ctx, Spec{Name: "backend", Command: "true", Env: []string{"PATH=" + testPath}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpawnLogsOutputWithChildPath(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSpawner(&buf)

	p, err := s.Spawn(context.Background(), Spec{
		Name:    "frontend",
		Command: "sh",
		Args:    []string{"-c", `echo "path=$PATH"; echo oops >&2`},
		Dir:     t.TempDir(),
		Env:     []string{"PATH=" + testPath},
		Output:  OutputLog,
	})
	require.NoError(t, err)
	waitDone(t, p)

	out := buf.String()
	assert.Contains(t, out, `"message":"path=`+testPath+`"`)
	assert.Contains(t, out, `"stream":"stderr"`)
	assert.Contains(t, out, `"component":"frontend"`)
}

func TestStopTerminatesProcessGroup(t *testing.T) {
	s := newTestSpawner(nil)

	p, err := s.Spawn(context.Background(), Spec{
		Name:    "frontend",
		Command: "sleep",
		Args:    []string{"30"},
		Dir:     t.TempDir(),
		Env:     []string{"PATH=" + testPath},
	})
	require.NoError(t, err)
	require.True(t, p.Running())

	require.NoError(t, p.Stop())
	assert.False(t, p.Running())

	// stopping twice is harmless
	assert.NoError(t, p.Stop())
}

func TestLineLogger(t *testing.T) {
	var buf bytes.Buffer
	w := newLineLogger(zerolog.New(&buf), "stdout")

	_, _ = w.Write([]byte("App running at:\r\n  - Local: http://local"))
	assert.Contains(t, buf.String(), `"message":"App running at:"`)
	assert.NotContains(t, buf.String(), "Local")

	_, _ = w.Write([]byte("host:8080/\n"))
	assert.Contains(t, buf.String(), `"message":"  - Local: http://localhost:8080/"`)
}

func TestFakeSpawner(t *testing.T) {
	s := NewFakeSpawner()
	s.FailSpawn("backend", errors.New("no python"))

	_, err := s.Spawn(context.Background(), Spec{Name: "backend"})
	require.Error(t, err)

	var exited int
	p, err := s.Spawn(context.Background(), Spec{
		Name:   "frontend",
		OnExit: func(string, int, error) { exited++ },
	})
	require.NoError(t, err)
	s.SetPorts("frontend", 8080)

	ports, err := p.ListeningPorts()
	require.NoError(t, err)
	assert.Equal(t, []uint32{8080}, ports)

	require.NoError(t, p.Stop())
	assert.True(t, s.Process("frontend").Stopped())
	assert.Equal(t, 1, exited)
	assert.Len(t, s.Specs(), 2)
}
