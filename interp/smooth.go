package interp

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// DefaultBlurPasses is how many times occlusion masks are blurred.
const DefaultBlurPasses = 3

// Smoother softens binary occlusion masks into blend weights. The input
// mask is left untouched.
type Smoother interface {
	Smooth(mask *mat.Dense, passes int) (*mat.Dense, error)
}

// gaussTaps is the 5 tap kernel OpenCV derives for a 5x5 Gaussian with
// sigma 0.
var gaussTaps = [5]float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}

// GaussianSmoother applies a separable 5x5 Gaussian in float64, mirroring
// the border without repeating the edge sample.
type GaussianSmoother struct{}

func (GaussianSmoother) Smooth(mask *mat.Dense, passes int) (*mat.Dense, error) {
	rows, cols := mask.Dims()
	out := mat.DenseCopyOf(mask)
	tmp := mat.NewDense(rows, cols, nil)

	for p := 0; p < passes; p++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				s := 0.0
				for k, tap := range gaussTaps {
					s += tap * out.At(r, reflect101(c+k-2, cols))
				}
				tmp.Set(r, c, s)
			}
		}

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				s := 0.0
				for k, tap := range gaussTaps {
					s += tap * tmp.At(reflect101(r+k-2, rows), c)
				}
				out.Set(r, c, s)
			}
		}
	}

	return out, nil
}

// reflect101 maps an out of range index back into [0, n) as in
// "gfedcb|abcdefgh|gfedcba".
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}

	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}

	return i
}

// ImagingSmoother runs the same 5x5 kernel through imaging.Convolve5x5.
// Masks go through an 8 bit grey image, so values are quantized to 1/255.
type ImagingSmoother struct{}

func (ImagingSmoother) Smooth(mask *mat.Dense, passes int) (*mat.Dense, error) {
	rows, cols := mask.Dims()

	var kernel [25]float64
	for r, tr := range gaussTaps {
		for c, tc := range gaussTaps {
			kernel[r*5+c] = tr * tc
		}
	}

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.SetGray(c, r, color.Gray{Y: uint8(math.Round(clip(mask.At(r, c), 0, 1) * 255))})
		}
	}

	var blurred image.Image = img
	for p := 0; p < passes; p++ {
		blurred = imaging.Convolve5x5(blurred, kernel, nil)
	}

	nrgba, ok := blurred.(*image.NRGBA)
	if !ok {
		nrgba = imaging.Clone(blurred)
	}

	bounds := nrgba.Bounds()
	if bounds.Dx() != cols || bounds.Dy() != rows {
		return nil, fmt.Errorf("%w: blurred mask is %dx%d, want %dx%d",
			ErrShapeMismatch, bounds.Dx(), bounds.Dy(), cols, rows)
	}

	out := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, float64(nrgba.Pix[nrgba.PixOffset(c, r)])/255)
		}
	}

	return out, nil
}
