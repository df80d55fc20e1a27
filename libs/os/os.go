package os

import (
	"fmt"
	"os"

	"github.com/creachadair/atomicfile"
)

// EnsureDir creates dir and any missing parents with mode.
func EnsureDir(dir string, mode os.FileMode) error {
	if err := os.MkdirAll(dir, mode); err != nil {
		return fmt.Errorf("could not create directory %q: %w", dir, err)
	}
	return nil
}

// FileExists reports whether something exists at filePath.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// WriteFileAtomic writes contents to filePath so that readers see either the
// old file or the complete new one, never a partial write.
func WriteFileAtomic(filePath string, contents []byte, mode os.FileMode) error {
	f, err := atomicfile.New(filePath, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(contents); err != nil {
		f.Cancel()
		return err
	}
	return f.Close()
}
