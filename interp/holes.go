package interp

import "fmt"

// FindHoles flags every invalid vector of the flow field.
func FindHoles(flow *FlowField) *HoleMask {
	mask := &HoleMask{
		Width:  flow.Width,
		Height: flow.Height,
		Valid:  make([]uint8, len(flow.Vectors)),
	}

	for i, v := range flow.Vectors {
		if !v.Invalid() {
			mask.Valid[i] = 1
		}
	}

	return mask
}

// neighbours are the 8 offsets around a pixel.
var neighbours = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// FillHoles replaces every hole of flow with the mean of the valid vectors
// around it, working outside-in until no hole is left. The flow and the
// mask are not modified; the filled copy is returned.
//
// Passes run row-major and a filled pixel counts as valid for the pixels
// visited after it in the same pass.
func FillHoles(flow *FlowField, holes *HoleMask) (*FlowField, error) {
	if holes == nil || holes.Width != flow.Width || holes.Height != flow.Height ||
		len(holes.Valid) != len(flow.Vectors) {
		return nil, fmt.Errorf("%w: hole mask does not match the %dx%d flow",
			ErrShapeMismatch, flow.Width, flow.Height)
	}

	filled := flow.Clone()
	valid := make([]uint8, len(holes.Valid))
	copy(valid, holes.Valid)

	remaining := 0
	for _, v := range valid {
		if v == 0 {
			remaining++
		}
	}

	w, h := flow.Width, flow.Height
	for remaining > 0 {
		progress := 0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				if valid[idx] == 1 {
					continue
				}

				var sumU, sumV float64
				n := 0
				for _, o := range neighbours {
					nx, ny := x+o[0], y+o[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}

					nidx := ny*w + nx
					if valid[nidx] == 0 {
						continue
					}

					sumU += filled.Vectors[nidx].U
					sumV += filled.Vectors[nidx].V
					n++
				}

				if n == 0 {
					continue
				}

				filled.Vectors[idx] = Vector{U: sumU / float64(n), V: sumV / float64(n)}
				valid[idx] = 1
				progress++
			}
		}

		if progress == 0 {
			return nil, fmt.Errorf("%w: %d holes have no valid neighbour", ErrDegenerateHoleField, remaining)
		}

		remaining -= progress
	}

	return filled, nil
}
