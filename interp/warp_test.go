package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarpFlowIdentity(t *testing.T) {
	frame := uniformFrame(6, 5, 120)
	flow := NewFlowField(6, 5)

	warped, confidence, err := WarpFlowConfidence(flow, frame, frame, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, FindHoles(warped).Holes())
	for _, v := range warped.Vectors {
		assert.Equal(t, Vector{}, v)
	}
	for _, c := range confidence.RawMatrix().Data {
		assert.Equal(t, 0.0, c)
	}
}

func TestWarpFlowTranslation(t *testing.T) {
	frame := uniformFrame(6, 6, 30)
	flow := constantFlow(6, 6, Vector{U: 1, V: 0})

	warped, err := WarpFlow(flow, frame, frame, 1)
	require.NoError(t, err)

	for y := 0; y < 6; y++ {
		assert.True(t, warped.At(0, y).Invalid(), "column 0 must stay a hole")
		for x := 1; x < 6; x++ {
			assert.Equal(t, Vector{U: 1, V: 0}, warped.At(x, y))
		}
	}
}

func TestWarpFlowTieKeepsFirstWriter(t *testing.T) {
	frame := uniformFrame(7, 7, 50)
	flow := NewFlowField(7, 7)
	flow.Set(3, 3, Vector{U: 0.2, V: 0})

	warped, err := WarpFlow(flow, frame, frame, 1)
	require.NoError(t, err)

	// (3,3) is first reached by source (2,2), (4,4) by source (3,3).
	assert.Equal(t, Vector{}, warped.At(3, 3))
	assert.Equal(t, Vector{U: 0.2, V: 0}, warped.At(4, 4))
}

func TestWarpFlowLowestConfidenceWins(t *testing.T) {
	f0 := uniformFrame(7, 7, 0)
	f0.SetPixel(2, 2, [Channels]float64{50, 50, 50})
	f1 := uniformFrame(7, 7, 0)

	flow := NewFlowField(7, 7)
	flow.Set(2, 2, Vector{U: 0.1, V: 0})
	flow.Set(3, 2, Vector{U: 0, V: 0.1})

	warped, confidence, err := WarpFlowConfidence(flow, f0, f1, 1)
	require.NoError(t, err)

	assert.Equal(t, Vector{U: 0, V: 0.1}, warped.At(3, 3))
	assert.Equal(t, 0.0, confidence.At(3, 3))
	// Source (1,1) reached (2,2) first with a perfect match.
	assert.Equal(t, Vector{}, warped.At(2, 2))
	assert.Equal(t, 0.0, confidence.At(2, 2))
}

func TestWarpFlowSkipsHoles(t *testing.T) {
	frame := uniformFrame(4, 4, 10)
	flow := NewInvalidFlowField(4, 4)

	warped, err := WarpFlow(flow, frame, frame, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 16, FindHoles(warped).Holes())
}

func TestWarpFlowShapeMismatch(t *testing.T) {
	frame := uniformFrame(4, 4, 10)

	_, err := WarpFlow(NewFlowField(5, 4), frame, frame, 0.5)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = WarpFlow(NewFlowField(4, 4), frame, uniformFrame(4, 5, 10), 0.5)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
