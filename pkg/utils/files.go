package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadSuffix is returned for source names that do not end in the
// required suffix.
var ErrBadSuffix = errors.New("bad suffix")

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ValidateSource checks that the last occurrence of the suffix's first
// character starts the suffix itself, and returns path without it.
func ValidateSource(path, suffix string) (base string, err error) {
	if suffix != "" {
		if i := strings.LastIndexByte(path, suffix[0]); i >= 0 && path[i:] == suffix {
			return path[:i], nil
		}
	}
	return "", fmt.Errorf("'%s' does not have '%s' extension: %w", path, suffix, ErrBadSuffix)
}

// OutputPath derives an output file name from a source base name.
func OutputPath(base, suffix string) string {
	return base + suffix
}

// FileCreator creates output files next to a source file.
type FileCreator struct {
	Base string
}

func (f FileCreator) Create(suffix string) (io.WriteCloser, error) {
	path := OutputPath(f.Base, suffix)
	w, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("Could not create output file '%s': %w", path, err)
	}
	return w, nil
}
