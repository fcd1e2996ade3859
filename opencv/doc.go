/*
Package opencv backs the interpolation collaborators with OpenCV through
gocv: Farneback flow estimation and Gaussian mask smoothing.

OpenCV is only linked when building with the gocv tag:

	go build -tags gocv ./...

Without the tag every entry point returns ErrUnavailable, so the rest of
the program builds with no C dependency.
*/
package opencv

import "errors"

// ErrUnavailable is returned when the binary was built without OpenCV.
var ErrUnavailable = errors.New("opencv support not built in (build with -tags gocv)")

// Farneback parameters used for flow estimation.
const (
	PyrScale   = 0.5
	Levels     = 3
	WinSize    = 15
	Iterations = 3
	PolyN      = 5
	PolySigma  = 1.2
)
