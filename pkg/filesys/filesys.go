// Package filesys collects the small set of file system helpers the
// storage and options layers need: creating the data directory on first
// open, checking whether a config file exists, and reading its raw bytes.
package filesys

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir creates dirPath (and any missing parents) with permission.
// If the path already exists as a directory, force controls whether that's
// an error or a no-op; if it exists as a non-directory, that's always an
// error.
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}
	if !force {
		if stat != nil {
			return os.ErrExist
		}
		if !os.IsNotExist(err) {
			return err
		}
	}
	return os.MkdirAll(dirPath, permission)
}

// ReadDir expands dirName as a glob pattern and returns the matching paths.
func ReadDir(dirName string) ([]string, error) {
	return filepath.Glob(dirName)
}

// ReadFile reads the entire content of the file at filePath.
func ReadFile(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

// Exists reports whether a file or directory exists at the given path.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
