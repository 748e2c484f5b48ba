package utils

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CreateFile creates (or truncates) fileName inside directory, creating the directory first if needed. An empty
// directory means the working directory.
func CreateFile(directory string, fileName string) (*os.File, error) {
	if directory != "" {
		if err := MakeDirectory(directory); err != nil {
			return nil, err
		}
	}

	file, err := os.Create(filepath.Join(directory, fileName))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return file, nil
}

// MakeDirectory creates directory and any missing parents. It fails if a non-directory already exists at that path.
func MakeDirectory(directory string) error {
	info, err := os.Stat(directory)
	switch {
	case os.IsNotExist(err):
		return errors.WithStack(os.MkdirAll(directory, 0755))
	case err != nil:
		return errors.WithStack(err)
	case !info.IsDir():
		return errors.Errorf("there is a file with the same name as %s", directory)
	default:
		return nil
	}
}
