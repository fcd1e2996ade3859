package interp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// subPixel are the splat offsets used around every projected pixel.
var subPixel = [3]float64{-0.5, 0, 0.5}

// WarpFlow forward-warps flow (frame0 -> frame1) to time t. Cells no
// source lands on keep the Sentinel and show up as holes.
func WarpFlow(flow *FlowField, f0, f1 *Frame, t float64) (*FlowField, error) {
	warped, _, err := WarpFlowConfidence(flow, f0, f1, t)
	return warped, err
}

// WarpFlowConfidence is WarpFlow that also returns the confidence map
// left behind by the z-buffer, Sentinel where nothing was written.
//
// Every source pixel is splatted to the 3x3 cells around its position at
// time t. A cell takes the vector of the source whose colour best matches
// its landing point in frame1 (sum of absolute channel differences);
// on a tie the first source in row-major order keeps the cell.
func WarpFlowConfidence(flow *FlowField, f0, f1 *Frame, t float64) (*FlowField, *mat.Dense, error) {
	if err := checkFrames(f0, f1); err != nil {
		return nil, nil, err
	}
	if err := checkFlow(flow, f0.Width, f0.Height); err != nil {
		return nil, nil, err
	}

	w, h := f0.Width, f0.Height
	warped := NewInvalidFlowField(w, h)
	confidence := NewMask(w, h)
	conf := confidence.RawMatrix().Data
	for i := range conf {
		conf[i] = Sentinel
	}
	stride := confidence.RawMatrix().Stride

	maxX, maxY := float64(w-1), float64(h-1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := flow.At(x, y)
			if v.Invalid() {
				continue
			}

			p0 := f0.Pixel(x, y)
			for _, yy := range subPixel {
				for _, xx := range subPixel {
					nx := nearest(float64(x) + t*v.U + xx)
					ny := nearest(float64(y) + t*v.V + yy)
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}

					p1 := SamplePixel(f1,
						clip(float64(x)+xx+v.U, 0, maxX),
						clip(float64(y)+yy+v.V, 0, maxY))
					c := 0.0
					for ch := 0; ch < Channels; ch++ {
						c += math.Abs(p1[ch] - p0[ch])
					}

					cell := ny*stride + nx
					if c < conf[cell] {
						conf[cell] = c
						warped.Set(nx, ny, v)
					}
				}
			}
		}
	}

	return warped, confidence, nil
}
