package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// Reader resolves a (directory, filename) pair inside the game data
// archive to raw bytes. Implementations must propagate an error when the
// file is absent or the archive is unreadable.
type Reader interface {
	ReadDataFile(dir, name string) ([]byte, error)
}

// DirReader serves archive reads from a plain directory tree. It is the
// implementation used by the demo entry point and by unpacked installs.
type DirReader struct {
	Root string
}

func NewDirReader(root string) *DirReader {
	return &DirReader{Root: root}
}

func (r *DirReader) ReadDataFile(dir, name string) ([]byte, error) {
	path := filepath.Join(r.Root, dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file '%s/%s': %w", dir, name, err)
	}
	return raw, nil
}
