//go:build !windows

package env

import (
	"io/fs"
	"strings"
)

// HasSeparator reports whether name is a path rather than a bare command.
func HasSeparator(name string) bool {
	return strings.ContainsRune(name, '/')
}

func executableCandidates(file string) []string {
	return []string{file}
}

func isExecutable(mode fs.FileMode) bool {
	return mode.Perm()&0o111 != 0
}
