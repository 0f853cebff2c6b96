package kde

import (
	"fmt"
	"math"

	"github.com/uyouii/weighted-kde/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Kde1D returns the gaussian kernel density estimate of samples at every x:
//
//	f(x) = 1/(n*h) * sum_j phi((x - samples_j) / h)
func Kde1D(x, samples []float64, bandwidth float64) ([]float64, error) {
	if err := checkSamples1D(samples, bandwidth); err != nil {
		return nil, err
	}

	kernel := NewGuassianKernel()
	kernel.SetH(bandwidth)
	norm := float64(len(samples)) * bandwidth

	res := make([]float64, len(x))
	for i := range x {
		res[i] = kernel.Sum(samples, x[i]) / norm
	}
	return res, nil
}

// KdeND returns the product gaussian kernel density estimate at x. Each row of
// samples is one sample, bandwidth holds one width per column.
func KdeND(x []float64, samples mat.Matrix, bandwidth []float64) (float64, error) {
	if err := checkSamplesND(x, samples, bandwidth); err != nil {
		return 0, err
	}
	n, d := samples.Dims()
	bwProd := floats.Prod(bandwidth)

	row := make([]float64, d)
	var sum float64
	for i := 0; i < n; i++ {
		mat.Row(row, i, samples)
		sum += math.Exp(logProductKernel(x, row, bandwidth))
	}
	return sum / (float64(n) * bwProd), nil
}

func checkSamples1D(samples []float64, bandwidth float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("empty samples: %w", common.ErrorInvalidValue)
	}
	return checkScalarBandwidth(bandwidth)
}

func checkSamplesND(x []float64, samples mat.Matrix, bandwidth []float64) error {
	if samples == nil {
		return fmt.Errorf("nil samples: %w", common.ErrorInvalidValue)
	}
	n, d := samples.Dims()
	if n == 0 {
		return fmt.Errorf("empty samples: %w", common.ErrorInvalidValue)
	}
	if len(x) != d || len(bandwidth) != d {
		return fmt.Errorf("x has %d dims, samples %d, bandwidth %d: %w",
			len(x), d, len(bandwidth), common.ErrorDimensionMismatch)
	}
	return checkBandwidth(bandwidth)
}

func checkFinite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("density evaluated to %v: %w", v, common.ErrorNumericDegeneracy)
	}
	return nil
}
