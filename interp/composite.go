package interp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BlendWeights returns the weights of frame0 and frame1 for a pixel whose
// rounded occlusion samples are oc0 and oc1. Visible on both sides means a
// cross dissolve, otherwise the less occluded side is used alone.
func BlendWeights(oc0, oc1, t float64) (w0, w1 float64) {
	switch {
	case oc0 == 0 && oc1 == 0:
		return 1 - t, t
	case oc0 > oc1:
		return 0, 1
	default:
		return 1, 0
	}
}

// Composite inverse-warps frame0 and frame1 to time t along the hole free
// flow at t, blending them according to the smoothed occlusion masks.
// Pixels whose projection into either frame cannot be sampled copy
// frame1.
func Composite(flowT *FlowField, f0, f1 *Frame, occ0, occ1 *mat.Dense, t float64, workers int) (*Frame, error) {
	if err := checkFrames(f0, f1); err != nil {
		return nil, err
	}
	if err := checkFlow(flowT, f0.Width, f0.Height); err != nil {
		return nil, err
	}
	if err := checkMask("occ0", occ0, f0.Width, f0.Height); err != nil {
		return nil, err
	}
	if err := checkMask("occ1", occ1, f0.Width, f0.Height); err != nil {
		return nil, err
	}

	w, h := f0.Width, f0.Height
	out := NewFrame(w, h)
	parallelRows(h, workers, func(y int) {
		for x := 0; x < w; x++ {
			v := flowT.At(x, y)
			x0, y0 := float64(x)-t*v.U, float64(y)-t*v.V
			x1, y1 := float64(x)+(1-t)*v.U, float64(y)+(1-t)*v.V

			if !sampleable(x0, y0, w, h) || !sampleable(x1, y1, w, h) {
				out.SetPixel(x, y, f1.Pixel(x, y))
				continue
			}

			p0 := SamplePixel(f0, x0, y0)
			p1 := SamplePixel(f1, x1, y1)
			oc0 := math.RoundToEven(SampleMask(occ0, x0, y0))
			oc1 := math.RoundToEven(SampleMask(occ1, x1, y1))
			w0, w1 := BlendWeights(oc0, oc1, t)

			var p [Channels]float64
			for c := 0; c < Channels; c++ {
				p[c] = math.RoundToEven(w0*p0[c] + w1*p1[c])
			}
			out.SetPixel(x, y, p)
		}
	})

	return out, nil
}
