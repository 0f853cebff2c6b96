package kde

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// WeightedKdeBhattacharyya1D corrects the same sampling bias as
// WeightedKdeJones1D, but divides the aggregated estimate by the weighting at
// the query point instead of weighting every sample:
//
//	f(x) = 1/(n*h) * sum_j phi((x - s_j) / h) / w(x)
//
// The estimate and the weighting are combined in log space, so a query point
// deep in the tail of the weighting does not turn into 0 * Inf.
func WeightedKdeBhattacharyya1D(x, samples []float64, mean, sd, exponent, bandwidth float64) ([]float64, error) {
	if err := checkSamples1D(samples, bandwidth); err != nil {
		return nil, err
	}
	if err := checkScalarWeighting(sd); err != nil {
		return nil, err
	}

	kernel := NewGuassianKernel()
	logNorm := math.Log(float64(len(samples)) * bandwidth)

	terms := make([]float64, len(samples))
	res := make([]float64, len(x))
	for i := range x {
		for j, s := range samples {
			terms[j] = kernel.LogShape((x[i] - s) / bandwidth)
		}
		// w(x), not w(samples)
		res[i] = math.Exp(floats.LogSumExp(terms) - logNorm - logWeighting1D(x[i], mean, sd, exponent))
		if err := checkFinite(res[i]); err != nil {
			return nil, fmt.Errorf("bhattacharyya estimate at x=%v: %w", x[i], err)
		}
	}
	return res, nil
}

// WeightedKdeBhattacharyyaND is the multivariate form of
// WeightedKdeBhattacharyya1D.
func WeightedKdeBhattacharyyaND(x []float64, samples mat.Matrix, mean, sd []float64,
	exponent float64, bandwidth []float64) (float64, error) {
	if err := checkSamplesND(x, samples, bandwidth); err != nil {
		return 0, err
	}
	if err := checkWeighting(len(x), mean, sd); err != nil {
		return 0, err
	}

	n, d := samples.Dims()
	logNorm := math.Log(float64(n)) + floats.Sum(logBandwidth(bandwidth))

	row := make([]float64, d)
	terms := make([]float64, n)
	for i := 0; i < n; i++ {
		mat.Row(row, i, samples)
		terms[i] = logProductKernel(x, row, bandwidth)
	}

	res := math.Exp(floats.LogSumExp(terms) - logNorm - logWeighting(x, mean, sd, exponent))
	if err := checkFinite(res); err != nil {
		return 0, fmt.Errorf("bhattacharyya estimate: %w", err)
	}
	return res, nil
}

func logBandwidth(bandwidth []float64) []float64 {
	res := make([]float64, len(bandwidth))
	for i, bw := range bandwidth {
		res[i] = math.Log(bw)
	}
	return res
}
