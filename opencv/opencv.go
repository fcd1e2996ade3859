//go:build gocv

package opencv

import (
	"context"
	"fmt"
	"image"

	"github.com/Zelak312/flowinterp/interp"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// Available reports whether OpenCV is linked in.
const Available = true

// Farneback estimates dense flow with OpenCV's Farneback algorithm on the
// grey levels of both frames.
type Farneback struct{}

func (Farneback) EstimateFlow(ctx context.Context, f0, f1 *interp.Frame) (*interp.FlowField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f0.Width != f1.Width || f0.Height != f1.Height {
		return nil, fmt.Errorf("%w: frame0 is %dx%d, frame1 is %dx%d",
			interp.ErrShapeMismatch, f0.Width, f0.Height, f1.Width, f1.Height)
	}

	g0, err := grayMat(f0)
	if err != nil {
		return nil, err
	}
	defer g0.Close()

	g1, err := grayMat(f1)
	if err != nil {
		return nil, err
	}
	defer g1.Close()

	flowMat := gocv.NewMat()
	defer flowMat.Close()
	gocv.CalcOpticalFlowFarneback(g0, g1, &flowMat, PyrScale, Levels, WinSize, Iterations, PolyN, PolySigma, 0)

	flow := interp.NewFlowField(f0.Width, f0.Height)
	for y := 0; y < f0.Height; y++ {
		for x := 0; x < f0.Width; x++ {
			vec := flowMat.GetVecfAt(y, x)
			flow.Set(x, y, interp.Vector{U: float64(vec[0]), V: float64(vec[1])})
		}
	}

	return flow, nil
}

func grayMat(f *interp.Frame) (gocv.Mat, error) {
	bgr, err := gocv.ImageToMatRGB(f.Image())
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("converting frame: %w", err)
	}
	defer bgr.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	return gray, nil
}

// Smoother blurs masks with gocv.GaussianBlur, 5x5 kernel and sigma
// derived from the kernel size.
type Smoother struct{}

func (Smoother) Smooth(mask *mat.Dense, passes int) (*mat.Dense, error) {
	rows, cols := mask.Dims()
	src := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	defer src.Close()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			src.SetFloatAt(r, c, float32(mask.At(r, c)))
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	for p := 0; p < passes; p++ {
		gocv.GaussianBlur(src, &dst, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
		dst.CopyTo(&src)
	}

	out := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, float64(src.GetFloatAt(r, c)))
		}
	}

	return out, nil
}
