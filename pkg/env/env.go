// Package env builds the environment handed to child processes.
//
// The parent process environment is never mutated; the search path is set
// only on the slice passed to each child.
package env

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// ErrNotFound is returned when a command cannot be resolved on the search path.
var ErrNotFound = errors.New("executable file not found in search path")

// Build returns base with PATH replaced by path and extra merged on top.
// Later entries win, so extra overrides base and PATH overrides both.
func Build(base []string, path string, extra map[string]string) []string {
	values := make(map[string]string, len(base)+len(extra)+1)
	order := make([]string, 0, len(base)+len(extra)+1)

	set := func(k, v string) {
		if _, seen := values[k]; !seen {
			order = append(order, k)
		}
		values[k] = v
	}

	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		set(k, v)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set(k, extra[k])
	}

	set("PATH", path)

	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, k+"="+values[k])
	}
	return out
}

// Get returns the value of key in an environment slice.
func Get(environ []string, key string) (string, bool) {
	for i := len(environ) - 1; i >= 0; i-- {
		k, v, ok := strings.Cut(environ[i], "=")
		if ok && k == key {
			return v, true
		}
	}
	return "", false
}

// LookPath resolves name against the search path, split with the
// platform list separator. Names containing a separator are checked as given.
func LookPath(fs afero.Fs, name, path string) (string, error) {
	if name == "" {
		return "", errors.Wrap(ErrNotFound, "empty command")
	}

	if HasSeparator(name) {
		return findExecutable(fs, name)
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		if found, err := findExecutable(fs, filepath.Join(dir, name)); err == nil {
			return found, nil
		}
	}
	return "", errors.Wrapf(ErrNotFound, "%s (PATH=%s)", name, path)
}

// findExecutable returns the first executable among the candidates for file.
func findExecutable(fs afero.Fs, file string) (string, error) {
	var firstErr error
	for _, candidate := range executableCandidates(file) {
		err := checkExecutable(fs, candidate)
		if err == nil {
			return candidate, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}

func checkExecutable(fs afero.Fs, file string) error {
	info, err := fs.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrNotFound, file)
		}
		return errors.Wrapf(err, "stat %s", file)
	}
	if info.IsDir() {
		return errors.Wrapf(ErrNotFound, "%s is a directory", file)
	}
	if !isExecutable(info.Mode()) {
		return errors.Wrapf(ErrNotFound, "%s is not executable", file)
	}
	return nil
}

// defaultPathExt is used when PATHEXT is unset.
const defaultPathExt = ".com;.exe;.bat;.cmd"

// withExtensions lists the names tried for file given a PATHEXT value: file
// itself when it already has an extension, then file with every extension.
func withExtensions(file, pathext string) []string {
	if pathext == "" {
		pathext = defaultPathExt
	}

	var candidates []string
	if filepath.Ext(file) != "" {
		candidates = append(candidates, file)
	}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		candidates = append(candidates, file+ext)
	}
	return candidates
}
