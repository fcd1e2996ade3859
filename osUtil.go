package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

func PathExist(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}

func IsSamePath(p1 string, p2 string) (bool, error) {
	absPath1, err := filepath.Abs(p1)
	if err != nil {
		return false, err
	}

	absPath2, err := filepath.Abs(p2)
	if err != nil {
		return false, err
	}

	// Compare the absolute paths
	return absPath1 == absPath2, nil
}
