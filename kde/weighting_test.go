package kde

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/weighted-kde/common"
)

func TestWeightingFunction(t *testing.T) {
	t.Parallel()

	t.Run("linear_scale", func(t *testing.T) {
		t.Parallel()

		got, err := WeightingFunction([]float64{0.5}, []float64{0}, []float64{1}, 2, false)
		require.NoError(t, err)
		assert.InDelta(t, 0.123949994309653, got, 1e-12)
	})

	t.Run("log_scale", func(t *testing.T) {
		t.Parallel()

		got, err := WeightingFunction([]float64{0.5}, []float64{0}, []float64{1}, 2, true)
		require.NoError(t, err)
		assert.InDelta(t, -2.0878770664093453, got, 1e-12)
	})

	t.Run("independent_dims", func(t *testing.T) {
		t.Parallel()

		got, err := WeightingFunction([]float64{1, 0}, []float64{0, 1}, []float64{1, 2}, 1, false)
		require.NoError(t, err)
		assert.InDelta(t, 0.04259475109761326, got, 1e-12)
	})

	t.Run("zero_exponent", func(t *testing.T) {
		t.Parallel()

		got, err := WeightingFunction([]float64{1e6}, []float64{0}, []float64{1}, 0, false)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
	})
}

func TestWeightingFunctionLogLinearAgreement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		point    []float64
		mean, sd []float64
		exponent float64
	}{
		{name: "1d", point: []float64{0.3}, mean: []float64{0}, sd: []float64{1}, exponent: 1},
		{name: "half_exponent", point: []float64{-1.2}, mean: []float64{0.5}, sd: []float64{0.7}, exponent: 0.5},
		{name: "3d", point: []float64{1, 2, 3}, mean: []float64{0, 2, 4}, sd: []float64{1, 0.5, 2}, exponent: 1.5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lw, err := WeightingFunction(tt.point, tt.mean, tt.sd, tt.exponent, true)
			require.NoError(t, err)
			w, err := WeightingFunction(tt.point, tt.mean, tt.sd, tt.exponent, false)
			require.NoError(t, err)
			assert.InEpsilon(t, w, math.Exp(lw), 1e-12)
		})
	}
}

func TestWeightingFunctionErrors(t *testing.T) {
	t.Parallel()

	_, err := WeightingFunction([]float64{1, 2}, []float64{0}, []float64{1, 1}, 1, false)
	require.ErrorIs(t, err, common.ErrorDimensionMismatch)

	_, err = WeightingFunction(nil, nil, nil, 1, false)
	require.ErrorIs(t, err, common.ErrorDimensionMismatch)
	_, err = WeightingFunction([]float64{}, []float64{}, []float64{}, 1, true)
	require.ErrorIs(t, err, common.ErrorDimensionMismatch)

	_, err = WeightingFunction([]float64{1}, []float64{0}, []float64{0}, 1, true)
	require.ErrorIs(t, err, common.ErrorInvalidValue)

	_, err = WeightingFunction([]float64{1}, []float64{0}, []float64{-2}, 1, false)
	require.ErrorIs(t, err, common.ErrorInvalidValue)
}
