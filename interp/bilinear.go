package interp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// clipBase returns floor(f) clipped to [1, size-2] so the 2x2 window
// never touches the outer border, and the fractional part of f.
func clipBase(f float64, size int) (int, float64) {
	base := math.Floor(f)
	frac := f - base

	i := int(base)
	if i < 1 {
		i = 1
	}
	if i > size-2 {
		i = size - 2
	}

	return i, frac
}

// SamplePixel bilinearly samples frame at (fx, fy).
func SamplePixel(frame *Frame, fx, fy float64) [Channels]float64 {
	x, a := clipBase(fx, frame.Width)
	y, b := clipBase(fy, frame.Height)

	w1 := (1 - a) * (1 - b)
	w2 := a * (1 - b)
	w3 := a * b
	w4 := (1 - a) * b

	i1 := (y*frame.Width + x) * Channels
	i2 := i1 + Channels
	i4 := i1 + frame.Width*Channels
	i3 := i4 + Channels

	var p [Channels]float64
	for c := 0; c < Channels; c++ {
		p[c] = w1*frame.Pix[i1+c] + w2*frame.Pix[i2+c] + w3*frame.Pix[i3+c] + w4*frame.Pix[i4+c]
	}

	return p
}

// SampleMask bilinearly samples a scalar mask at (fx, fy).
func SampleMask(mask *mat.Dense, fx, fy float64) float64 {
	rows, cols := mask.Dims()
	x, a := clipBase(fx, cols)
	y, b := clipBase(fy, rows)

	return (1-a)*(1-b)*mask.At(y, x) +
		a*(1-b)*mask.At(y, x+1) +
		a*b*mask.At(y+1, x+1) +
		(1-a)*b*mask.At(y+1, x)
}

// sampleable reports whether (fx, fy) can be sampled without the window
// being clipped.
func sampleable(fx, fy float64, width, height int) bool {
	return fx >= 1 && fx < float64(width-1) && fy >= 1 && fy < float64(height-1)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

// nearest rounds half up, the way destination cells are picked.
func nearest(v float64) int {
	return int(math.Floor(v + 0.5))
}
