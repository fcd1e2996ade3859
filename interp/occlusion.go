package interp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultMatchThreshold is the L1 distance below which the flow warped
	// to frame1 is considered consistent with the source flow.
	DefaultMatchThreshold = 0.5

	// DefaultOcclusionThreshold is the fraction of the 9 sub-pixel samples
	// that must be inconsistent for a source pixel to be occluded.
	DefaultOcclusionThreshold = 0.6
)

// OcclusionThresholds tunes EstimateOcclusions.
type OcclusionThresholds struct {
	Match     float64
	Occlusion float64
}

// DefaultOcclusionThresholds returns the thresholds used by Interpolate
// unless configured otherwise.
func DefaultOcclusionThresholds() OcclusionThresholds {
	return OcclusionThresholds{
		Match:     DefaultMatchThreshold,
		Occlusion: DefaultOcclusionThreshold,
	}
}

// EstimateOcclusions computes the binary occlusion masks of a hole free
// flow. occ0 marks frame0 pixels whose forward match in frame1 carries an
// inconsistent flow (or lies outside frame1). occ1 marks frame1 pixels no
// frame0 pixel lands on.
func EstimateOcclusions(flow *FlowField, f0, f1 *Frame, th OcclusionThresholds, workers int) (occ0, occ1 *mat.Dense, err error) {
	flow1, err := WarpFlow(flow, f0, f1, 1.0)
	if err != nil {
		return nil, nil, err
	}

	w, h := f0.Width, f0.Height
	occ0 = NewMask(w, h)
	occ1 = NewMask(w, h)

	samples := float64(len(subPixel) * len(subPixel))
	parallelRows(h, workers, func(y int) {
		for x := 0; x < w; x++ {
			v := flow.At(x, y)
			occluded := 0
			for _, yy := range subPixel {
				for _, xx := range subPixel {
					nx := nearest(float64(x) + v.U + xx)
					ny := nearest(float64(y) + v.V + yy)
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						occluded++
						continue
					}

					m := flow1.At(nx, ny)
					if math.Abs(m.U-v.U)+math.Abs(m.V-v.V) >= th.Match {
						occluded++
					}
				}
			}

			if float64(occluded)/samples >= th.Occlusion {
				occ0.Set(y, x, 1)
			}

			if flow1.At(x, y).Invalid() {
				occ1.Set(y, x, 1)
			}
		}
	})

	return occ0, occ1, nil
}
