//go:build !gocv

package opencv

import (
	"context"

	"github.com/Zelak312/flowinterp/interp"
	"gonum.org/v1/gonum/mat"
)

// Available reports whether OpenCV is linked in.
const Available = false

// Farneback is unavailable without the gocv build tag.
type Farneback struct{}

func (Farneback) EstimateFlow(ctx context.Context, f0, f1 *interp.Frame) (*interp.FlowField, error) {
	return nil, ErrUnavailable
}

// Smoother is unavailable without the gocv build tag.
type Smoother struct{}

func (Smoother) Smooth(mask *mat.Dense, passes int) (*mat.Dense, error) {
	return nil, ErrUnavailable
}
