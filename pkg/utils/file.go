package utils

import (
	"os"
	"path/filepath"
)

// Exists reports whether name exists on disk.
func Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// CreateNestedFile creates path and any missing parent directories.
func CreateNestedFile(path string) (*os.File, error) {
	basePath := filepath.Dir(path)
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		Log.Errorf("can't create folder, %s", err)
		return nil, err
	}
	return os.Create(path)
}
