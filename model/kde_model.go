package model

import (
	"fmt"

	"github.com/uyouii/weighted-kde/common"
)

type Clip struct {
	Lower float64
	Upper float64
}

type Density struct {
	X     float64
	Value float64
}

type Cdf struct {
	X     float64
	Value float64
}

type QuantileValue struct {
	Value    float64 `json:"v,omitempty"`
	Quantile float64 `json:"q,omitempty"`
}

type ConfidenceInterval struct {
	Lower *QuantileValue `json:"l,omitempty"`
	Upper *QuantileValue `json:"u,omitempty"`
}

type KdeConfidence struct {
	QuantileValues map[string]*QuantileValue `json:"quantiles,omitempty"`
}

func (c *KdeConfidence) GetQuantileValue(value float64) (*QuantileValue, bool) {
	if c == nil || c.QuantileValues == nil {
		return nil, false
	}
	valueStr := fmt.Sprintf("%v", value)
	quantile, ok := c.QuantileValues[valueStr]
	return quantile, ok
}

// Interval returns the interval between the lower and upper quantiles,
// both must have been calculated.
func (c *KdeConfidence) Interval(lower, upper float64) (*ConfidenceInterval, bool) {
	l, ok := c.GetQuantileValue(lower)
	if !ok {
		return nil, false
	}
	u, ok := c.GetQuantileValue(upper)
	if !ok {
		return nil, false
	}
	return &ConfidenceInterval{Lower: l, Upper: u}, true
}

// Weighting is the known sampling distortion: independent normal factors,
// one per dimension, raised to Exponent.
// Exponent 1 fully corrects a normal shaped bias, exponent 0 disables the correction.
type Weighting struct {
	Mean     []float64 `json:"mean"`
	SD       []float64 `json:"sd"`
	Exponent float64   `json:"exponent"`
}

func (w *Weighting) Dim() int {
	if w == nil {
		return 0
	}
	return len(w.Mean)
}

func (w *Weighting) Validate() error {
	if w == nil {
		return fmt.Errorf("nil weighting: %w", common.ErrorInvalidValue)
	}
	if len(w.Mean) != len(w.SD) {
		return fmt.Errorf("weighting mean has %d dims, sd has %d: %w",
			len(w.Mean), len(w.SD), common.ErrorDimensionMismatch)
	}
	for i, sd := range w.SD {
		if !(sd > 0) {
			return fmt.Errorf("weighting sd[%d] = %v: %w", i, sd, common.ErrorInvalidValue)
		}
	}
	return nil
}
