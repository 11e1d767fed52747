//go:build windows

package env

import (
	"io/fs"
	"os"
	"strings"
)

// HasSeparator reports whether name is a path rather than a bare command.
func HasSeparator(name string) bool {
	return strings.ContainsAny(name, `/\:`)
}

// executableCandidates tries the PATHEXT extensions, so npm finds npm.cmd.
func executableCandidates(file string) []string {
	return withExtensions(file, os.Getenv("PATHEXT"))
}

// isExecutable accepts any regular file; Windows has no execute bits.
func isExecutable(fs.FileMode) bool {
	return true
}
