package kde

import (
	"fmt"
	"math"

	"github.com/uyouii/weighted-kde/common"
	"gonum.org/v1/gonum/stat/distuv"
)

// WeightingFunction evaluates the sampling distortion at point: the product of
// independent normal densities N(point_i; mean_i, sd_i), raised to exponent.
//
// With logScale the result is exponent * sum_i log N(point_i; mean_i, sd_i) and
// is left in log space, so callers can add further log terms before a single
// exponentiation.
func WeightingFunction(point, mean, sd []float64, exponent float64, logScale bool) (float64, error) {
	if err := checkWeighting(len(point), mean, sd); err != nil {
		return 0, err
	}
	lw := logWeighting(point, mean, sd, exponent)
	if logScale {
		return lw, nil
	}
	return math.Exp(lw), nil
}

func checkWeighting(dim int, mean, sd []float64) error {
	if dim == 0 {
		return fmt.Errorf("empty point: %w", common.ErrorDimensionMismatch)
	}
	if len(mean) != dim || len(sd) != dim {
		return fmt.Errorf("point has %d dims, weighting mean %d, sd %d: %w",
			dim, len(mean), len(sd), common.ErrorDimensionMismatch)
	}
	for i := range sd {
		if err := checkScalarWeighting(sd[i]); err != nil {
			return fmt.Errorf("sd[%d]: %w", i, err)
		}
	}
	return nil
}

func checkScalarWeighting(sd float64) error {
	if !(sd > 0) || math.IsInf(sd, 1) {
		return fmt.Errorf("weighting sd %v must be positive and finite: %w", sd, common.ErrorInvalidValue)
	}
	return nil
}

func logWeighting(point, mean, sd []float64, exponent float64) float64 {
	var res float64
	for i := range point {
		res += logWeighting1D(point[i], mean[i], sd[i], exponent)
	}
	return res
}

func logWeighting1D(x, mean, sd, exponent float64) float64 {
	// keep exponent 0 exact even when the density underflows
	if exponent == 0 {
		return 0
	}
	return exponent * distuv.Normal{Mu: mean, Sigma: sd}.LogProb(x)
}
