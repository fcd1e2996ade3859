package main

import (
	"fmt"
	"os"

	"github.com/Zelak312/flowinterp/interp"
	"github.com/disintegration/imaging"

	// webp frames are decoded through image.Decode
	_ "golang.org/x/image/webp"
)

func LoadFrame(path string) (*interp.Frame, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame %s: %w", path, err)
	}

	return interp.FrameFromImage(img), nil
}

// SaveFrame encodes the frame in the format matching the path extension.
// It writes to path.tmp first and renames, so a crash never leaves a
// half written output behind.
func SaveFrame(path string, frame *interp.Frame) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	err = imaging.Encode(file, frame.Image(), format)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
