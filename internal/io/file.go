package ioutils

import (
	"os"
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/artwork/Willie Nelson")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
