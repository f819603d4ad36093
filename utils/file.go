package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// ResolveFile joins fn onto the module root, so tests and fixtures can name files by their path in the repository
// regardless of the package they run from.
func ResolveFile(fn string) string {
	_, here, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate utils/file.go")
	}
	root, err := filepath.Abs(filepath.Join(filepath.Dir(here), ".."))
	if err != nil {
		panic(err)
	}
	return filepath.Join(root, fn)
}

// GetenvInt returns the integer value of the named environment variable, or defaultVal if it is unset
// or not an integer.
func GetenvInt(name string, defaultVal int) int {
	s := os.Getenv(name)
	if s == "" {
		return defaultVal
	}
	x, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return x
}
