package kde

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/weighted-kde/common"
)

func TestProductKernel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		x, sample []float64
		bandwidth []float64
		expected  float64
	}{
		{name: "origin", x: []float64{0}, sample: []float64{0}, bandwidth: []float64{1}, expected: 0.3989422804014327},
		{name: "scaled_2d", x: []float64{1, 2}, sample: []float64{0, 0}, bandwidth: []float64{1, 2}, expected: 0.05854983152431917},
		{name: "symmetric", x: []float64{0, 0}, sample: []float64{1, 2}, bandwidth: []float64{1, 2}, expected: 0.05854983152431917},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ProductKernel(tt.x, tt.sample, tt.bandwidth)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)

			lk, err := LogProductKernel(tt.x, tt.sample, tt.bandwidth)
			require.NoError(t, err)
			assert.InDelta(t, math.Log(tt.expected), lk, 1e-12)
		})
	}
}

func TestProductKernelDimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := ProductKernel([]float64{1, 2}, []float64{1}, []float64{1, 1})
	require.ErrorIs(t, err, common.ErrorDimensionMismatch)

	_, err = ProductKernel([]float64{1, 2}, []float64{1, 2}, []float64{1})
	require.ErrorIs(t, err, common.ErrorDimensionMismatch)
}

func TestProductKernelInvalidBandwidth(t *testing.T) {
	t.Parallel()

	for _, bw := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := ProductKernel([]float64{1, 2}, []float64{1, 2}, []float64{1, bw})
		assert.ErrorIs(t, err, common.ErrorInvalidBandwidth, "bandwidth %v", bw)
	}
}

func TestGuassianKernelShape(t *testing.T) {
	t.Parallel()

	k := NewGuassianKernel()
	for _, u := range []float64{-3, -0.5, 0, 0.25, 2} {
		assert.InDelta(t, math.Log(k.Shape(u)), k.LogShape(u), 1e-12)
	}
	assert.InDelta(t, 1.0592238410488122, k.NormalReferenceConstant(), 1e-9)
}
