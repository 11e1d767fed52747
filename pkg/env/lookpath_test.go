//go:build !windows

package env

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/usr/local/bin/npm", []byte("#!"), 0755))
	require.NoError(t, afero.WriteFile(fs, "/usr/bin/python3", []byte("#!"), 0755))
	require.NoError(t, afero.WriteFile(fs, "/usr/bin/notes.txt", []byte("x"), 0644))
	require.NoError(t, fs.MkdirAll("/bin/node", 0755))

	tests := map[string]struct {
		name    string
		want    string
		wantErr bool
	}{
		"found in first dir": {name: "npm", want: "/usr/local/bin/npm"},
		"found in later dir": {name: "python3", want: "/usr/bin/python3"},
		"absolute path":      {name: "/usr/bin/python3", want: "/usr/bin/python3"},
		"missing":            {name: "node", wantErr: true},
		"not executable":     {name: "notes.txt", wantErr: true},
		"absolute missing":   {name: "/opt/python3", wantErr: true},
		"empty":              {name: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := LookPath(fs, tt.name, searchPath)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasSeparator(t *testing.T) {
	assert.False(t, HasSeparator("npm"))
	assert.True(t, HasSeparator("./venv/bin/python3"))
	assert.True(t, HasSeparator("/usr/bin/python3"))
}
