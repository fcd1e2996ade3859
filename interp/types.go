package interp

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Channels is the number of colour channels of a Frame.
const Channels = 3

const (
	// InvalidThreshold is the component magnitude above which a flow
	// vector is considered a hole.
	InvalidThreshold = 1e9

	// Sentinel is written to flow vectors and confidence cells that have
	// not been assigned yet. It is above InvalidThreshold.
	Sentinel = 1e10
)

// Frame is a colour image held as floating point samples. The sample for
// channel c of pixel (x,y) is at Pix[(y*Width+x)*Channels+c].
type Frame struct {
	Width  int
	Height int
	Pix    []float64
}

// NewFrame returns a black frame of the given size.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height*Channels),
	}
}

// FrameFromImage converts any image into a Frame, dropping alpha.
func FrameFromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	f := NewFrame(bounds.Dx(), bounds.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			idx := (y*f.Width + x) * Channels
			f.Pix[idx] = float64(c.R)
			f.Pix[idx+1] = float64(c.G)
			f.Pix[idx+2] = float64(c.B)
		}
	}

	return f
}

// Image clamps every sample to [0,255], rounds it to 8 bits and returns
// the opaque result.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			src := (y*f.Width + x) * Channels
			dst := img.PixOffset(x, y)
			for c := 0; c < Channels; c++ {
				img.Pix[dst+c] = toByte(f.Pix[src+c])
			}
			img.Pix[dst+3] = 0xff
		}
	}

	return img
}

// Pixel returns the three channels of pixel (x,y).
func (f *Frame) Pixel(x, y int) [Channels]float64 {
	idx := (y*f.Width + x) * Channels
	return [Channels]float64{f.Pix[idx], f.Pix[idx+1], f.Pix[idx+2]}
}

// SetPixel sets the three channels of pixel (x,y).
func (f *Frame) SetPixel(x, y int, p [Channels]float64) {
	idx := (y*f.Width + x) * Channels
	copy(f.Pix[idx:idx+Channels], p[:])
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}

	return uint8(math.RoundToEven(v))
}

// Vector is a displacement in pixels, U along x and V along y.
type Vector struct {
	U float64
	V float64
}

// Invalid reports whether the vector is a hole: a component above
// InvalidThreshold, NaN or infinite.
func (v Vector) Invalid() bool {
	return v.U > InvalidThreshold || v.V > InvalidThreshold ||
		math.IsNaN(v.U) || math.IsNaN(v.V) ||
		math.IsInf(v.U, 0) || math.IsInf(v.V, 0)
}

// FlowField is a dense per-pixel flow. The vector of pixel (x,y) is at
// Vectors[y*Width+x].
type FlowField struct {
	Width   int
	Height  int
	Vectors []Vector
}

// NewFlowField returns a zero flow of the given size.
func NewFlowField(width, height int) *FlowField {
	return &FlowField{
		Width:   width,
		Height:  height,
		Vectors: make([]Vector, width*height),
	}
}

// NewInvalidFlowField returns a flow whose every vector is the Sentinel.
func NewInvalidFlowField(width, height int) *FlowField {
	f := NewFlowField(width, height)
	for i := range f.Vectors {
		f.Vectors[i] = Vector{U: Sentinel, V: Sentinel}
	}

	return f
}

// At returns the vector of pixel (x,y).
func (f *FlowField) At(x, y int) Vector {
	return f.Vectors[y*f.Width+x]
}

// Set replaces the vector of pixel (x,y).
func (f *FlowField) Set(x, y int, v Vector) {
	f.Vectors[y*f.Width+x] = v
}

// Clone returns a deep copy of the field.
func (f *FlowField) Clone() *FlowField {
	c := &FlowField{
		Width:   f.Width,
		Height:  f.Height,
		Vectors: make([]Vector, len(f.Vectors)),
	}
	copy(c.Vectors, f.Vectors)
	return c
}

// HoleMask flags every pixel of a flow field, 0 for a hole and 1 for a
// valid vector.
type HoleMask struct {
	Width  int
	Height int
	Valid  []uint8
}

// At returns the flag of pixel (x,y).
func (m *HoleMask) At(x, y int) uint8 {
	return m.Valid[y*m.Width+x]
}

// Holes returns the number of holes in the mask.
func (m *HoleMask) Holes() int {
	n := 0
	for _, v := range m.Valid {
		if v == 0 {
			n++
		}
	}

	return n
}

// NewMask returns a zeroed height x width mask. A 0x0 mask is not
// representable by mat.Dense, callers validate sizes first.
func NewMask(width, height int) *mat.Dense {
	return mat.NewDense(height, width, nil)
}

func checkFrames(f0, f1 *Frame) error {
	if f0 == nil || f1 == nil {
		return fmt.Errorf("%w: missing frame", ErrShapeMismatch)
	}

	if f0.Width != f1.Width || f0.Height != f1.Height {
		return fmt.Errorf("%w: frame0 is %dx%d, frame1 is %dx%d",
			ErrShapeMismatch, f0.Width, f0.Height, f1.Width, f1.Height)
	}

	if f0.Width < 3 || f0.Height < 3 {
		return fmt.Errorf("%w: frames must be at least 3x3, got %dx%d",
			ErrShapeMismatch, f0.Width, f0.Height)
	}

	for _, f := range []*Frame{f0, f1} {
		if len(f.Pix) != f.Width*f.Height*Channels {
			return fmt.Errorf("%w: frame buffer holds %d samples, want %d",
				ErrShapeMismatch, len(f.Pix), f.Width*f.Height*Channels)
		}
	}

	return nil
}

func checkFlow(flow *FlowField, width, height int) error {
	if flow == nil {
		return fmt.Errorf("%w: missing flow", ErrShapeMismatch)
	}

	if flow.Width != width || flow.Height != height {
		return fmt.Errorf("%w: flow is %dx%d, frames are %dx%d",
			ErrShapeMismatch, flow.Width, flow.Height, width, height)
	}

	if len(flow.Vectors) != width*height {
		return fmt.Errorf("%w: flow holds %d vectors, want %d",
			ErrShapeMismatch, len(flow.Vectors), width*height)
	}

	return nil
}

func checkMask(name string, m *mat.Dense, width, height int) error {
	if m == nil {
		return fmt.Errorf("%w: missing %s", ErrShapeMismatch, name)
	}

	rows, cols := m.Dims()
	if rows != height || cols != width {
		return fmt.Errorf("%w: %s is %dx%d, frames are %dx%d",
			ErrShapeMismatch, name, cols, rows, width, height)
	}

	return nil
}
