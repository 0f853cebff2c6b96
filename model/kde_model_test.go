package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/weighted-kde/common"
)

func TestWeightingValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		weighting *Weighting
		err       error
	}{
		{name: "valid", weighting: &Weighting{Mean: []float64{0, 1}, SD: []float64{1, 2}, Exponent: 1}},
		{name: "nil", weighting: nil, err: common.ErrorInvalidValue},
		{name: "mismatch", weighting: &Weighting{Mean: []float64{0}, SD: []float64{1, 2}}, err: common.ErrorDimensionMismatch},
		{name: "zero_sd", weighting: &Weighting{Mean: []float64{0}, SD: []float64{0}}, err: common.ErrorInvalidValue},
		{name: "nan_sd", weighting: &Weighting{Mean: []float64{0}, SD: []float64{math.NaN()}}, err: common.ErrorInvalidValue},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.weighting.Validate()
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWeightingDim(t *testing.T) {
	t.Parallel()

	var w *Weighting
	assert.Equal(t, 0, w.Dim())
	assert.Equal(t, 2, (&Weighting{Mean: []float64{0, 1}, SD: []float64{1, 1}}).Dim())
}

func TestKdeConfidenceGetQuantileValue(t *testing.T) {
	t.Parallel()

	var empty *KdeConfidence
	_, ok := empty.GetQuantileValue(0.5)
	assert.False(t, ok)

	c := &KdeConfidence{QuantileValues: map[string]*QuantileValue{
		"0.05": {Quantile: 0.05, Value: -1.6},
		"0.95": {Quantile: 0.95, Value: 1.6},
	}}
	q, ok := c.GetQuantileValue(0.05)
	require.True(t, ok)
	assert.Equal(t, -1.6, q.Value)

	interval, ok := c.Interval(0.05, 0.95)
	require.True(t, ok)
	assert.Equal(t, 1.6, interval.Upper.Value)
}
