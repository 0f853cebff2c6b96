package kde

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// WeightedKdeJones1D estimates the density behind samples that were drawn
// proportionally to the weighting N(mean, sd)^exponent. The kernel of every
// sample is divided by the weighting evaluated at that sample:
//
//	f(x) = 1/(n*h) * sum_j phi((x - s_j) / h) / w(s_j)
//
// The sum is accumulated in log space.
func WeightedKdeJones1D(x, samples []float64, mean, sd, exponent, bandwidth float64) ([]float64, error) {
	if err := checkSamples1D(samples, bandwidth); err != nil {
		return nil, err
	}
	if err := checkScalarWeighting(sd); err != nil {
		return nil, err
	}

	n := len(samples)
	logWfInv := make([]float64, n)
	for j, s := range samples {
		logWfInv[j] = -logWeighting1D(s, mean, sd, exponent)
	}

	kernel := NewGuassianKernel()
	logNorm := math.Log(float64(n) * bandwidth)

	terms := make([]float64, n)
	res := make([]float64, len(x))
	for i := range x {
		for j, s := range samples {
			terms[j] = kernel.LogShape((x[i]-s)/bandwidth) + logWfInv[j]
		}
		res[i] = math.Exp(floats.LogSumExp(terms) - logNorm)
		if err := checkFinite(res[i]); err != nil {
			return nil, fmt.Errorf("jones estimate at x=%v: %w", x[i], err)
		}
	}
	return res, nil
}

// WeightedKdeJonesND is the multivariate form of WeightedKdeJones1D, with one
// bandwidth and one independent weighting factor per column of samples.
func WeightedKdeJonesND(x []float64, samples mat.Matrix, mean, sd []float64,
	exponent float64, bandwidth []float64) (float64, error) {
	if err := checkSamplesND(x, samples, bandwidth); err != nil {
		return 0, err
	}
	if err := checkWeighting(len(x), mean, sd); err != nil {
		return 0, err
	}

	n, d := samples.Dims()
	bwProd := floats.Prod(bandwidth)

	row := make([]float64, d)
	terms := make([]float64, n)
	for i := 0; i < n; i++ {
		mat.Row(row, i, samples)
		terms[i] = logProductKernel(x, row, bandwidth) - logWeighting(row, mean, sd, exponent)
	}

	res := math.Exp(floats.LogSumExp(terms)) / (float64(n) * bwProd)
	if err := checkFinite(res); err != nil {
		return 0, fmt.Errorf("jones estimate: %w", err)
	}
	return res, nil
}
