package interp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func createTestFrame(width, height int, seed int64) *Frame {
	rng := rand.New(rand.NewSource(seed))
	f := NewFrame(width, height)
	for i := range f.Pix {
		f.Pix[i] = float64(rng.Intn(256))
	}

	return f
}

func uniformFrame(width, height int, value float64) *Frame {
	f := NewFrame(width, height)
	for i := range f.Pix {
		f.Pix[i] = value
	}

	return f
}

func constantFlow(width, height int, v Vector) *FlowField {
	f := NewFlowField(width, height)
	for i := range f.Vectors {
		f.Vectors[i] = v
	}

	return f
}

func requireBinary(t *testing.T, m *mat.Dense) {
	t.Helper()
	for _, v := range m.RawMatrix().Data {
		require.True(t, v == 0 || v == 1, "mask value %v is not binary", v)
	}
}
