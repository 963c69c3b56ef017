// Package filex holds small filesystem helpers for the shell.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrIsDirectory = errors.New("is a directory")

// EnsureSubdDir creates dirName under the working directory if needed and
// returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// LocalFile is a file read from disk for upload.
type LocalFile struct {
	Name string
	Size int64
	// Data is nil when Size exceeded the read limit.
	Data []byte
}

// ReadLimited stats path and reads its content only when it is at most
// limit bytes, so oversized files are described without being loaded.
func ReadLimited(path string, limit int64) (*LocalFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	f := &LocalFile{Name: fi.Name(), Size: fi.Size()}
	if f.Size > limit {
		return f, nil
	}

	f.Data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f.Size = int64(len(f.Data))
	return f, nil
}
