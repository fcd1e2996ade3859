package opencv

import (
	"context"
	"testing"

	"github.com/Zelak312/flowinterp/interp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFrame(width, height int, offset int) *interp.Frame {
	f := interp.NewFrame(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := float64(((x+offset)*37 + y*11) % 256)
			f.SetPixel(x, y, [interp.Channels]float64{v, v, v})
		}
	}

	return f
}

func TestFarneback(t *testing.T) {
	f0 := createTestFrame(32, 24, 0)
	f1 := createTestFrame(32, 24, 1)

	flow, err := Farneback{}.EstimateFlow(context.Background(), f0, f1)
	if !Available {
		assert.ErrorIs(t, err, ErrUnavailable)
		return
	}

	require.NoError(t, err)
	assert.Equal(t, 32, flow.Width)
	assert.Equal(t, 24, flow.Height)
	assert.Len(t, flow.Vectors, 32*24)
}

func TestSmoother(t *testing.T) {
	mask := interp.NewMask(9, 9)
	mask.Set(4, 4, 1)

	out, err := Smoother{}.Smooth(mask, 3)
	if !Available {
		assert.ErrorIs(t, err, ErrUnavailable)
		return
	}

	require.NoError(t, err)
	for _, v := range out.RawMatrix().Data {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Less(t, out.At(4, 4), 1.0)
}
