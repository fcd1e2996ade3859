package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateOcclusionsStatic(t *testing.T) {
	frame := createTestFrame(8, 6, 7)
	flow := NewFlowField(8, 6)

	occ0, occ1, err := EstimateOcclusions(flow, frame, frame, DefaultOcclusionThresholds(), 4)
	require.NoError(t, err)

	requireBinary(t, occ0)
	requireBinary(t, occ1)
	assert.Equal(t, 0.0, occ0.Norm(1))
	assert.Equal(t, 0.0, occ1.Norm(1))
}

func TestEstimateOcclusionsTranslation(t *testing.T) {
	const w, h = 6, 5
	frame := uniformFrame(w, h, 90)
	flow := constantFlow(w, h, Vector{U: 1, V: 0})

	for _, workers := range []int{1, 3} {
		occ0, occ1, err := EstimateOcclusions(flow, frame, frame, DefaultOcclusionThresholds(), workers)
		require.NoError(t, err)

		requireBinary(t, occ0)
		requireBinary(t, occ1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				// Pixels of the last column leave the frame.
				wantOcc0 := 0.0
				if x == w-1 {
					wantOcc0 = 1
				}
				assert.Equal(t, wantOcc0, occ0.At(y, x), "occ0 at (%d,%d)", x, y)

				// Nothing lands on the first column.
				wantOcc1 := 0.0
				if x == 0 {
					wantOcc1 = 1
				}
				assert.Equal(t, wantOcc1, occ1.At(y, x), "occ1 at (%d,%d)", x, y)
			}
		}
	}
}

func TestEstimateOcclusionsThreshold(t *testing.T) {
	const w, h = 6, 5
	frame := uniformFrame(w, h, 90)
	flow := constantFlow(w, h, Vector{U: 1, V: 0})

	// Column w-2 has 3 of 9 samples out of the frame, 5 of 9 on the last
	// row. A threshold of 1/3 catches all of them.
	occ0, _, err := EstimateOcclusions(flow, frame, frame, OcclusionThresholds{Match: 0.5, Occlusion: 1.0 / 3}, 1)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		assert.Equal(t, 1.0, occ0.At(y, w-2))
	}
	assert.Equal(t, 0.0, occ0.At(1, w-3))
}
