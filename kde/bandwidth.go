package kde

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/weighted-kde/common"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type BandWidth interface {
	BandWidth([]float64) float64
}

type NormalReferenceBandWidth struct {
	kernel Kernel
}

func NewNormalReferenceBandWidth(kernel Kernel) *NormalReferenceBandWidth {
	if kernel == nil {
		kernel = NewGuassianKernel()
	}
	return &NormalReferenceBandWidth{
		kernel: kernel,
	}
}

func (bw *NormalReferenceBandWidth) BandWidth(x []float64) float64 {
	C := bw.kernel.NormalReferenceConstant()
	A := selectSigma(x)
	n := len(x)
	return C * A * math.Pow(float64(n), -0.2)
}

func selectSigma(x []float64) float64 {
	normalize := 1.349

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	q75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	q25 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	iqr := (q75 - q25) / normalize

	stdDev := stat.StdDev(sorted, nil)

	if iqr > 0 {
		if stdDev < iqr {
			return stdDev
		}
		return iqr
	}
	return stdDev
}

// ScottBandwidth returns one bandwidth per column of samples using Scott's
// rule of thumb, h_j = n^(-1/(d+4)) * std_j.
func ScottBandwidth(samples mat.Matrix) ([]float64, error) {
	return ruleOfThumb(samples, func(n, d float64) float64 {
		return math.Pow(n, -1/(d+4))
	})
}

// SilvermanBandwidth returns one bandwidth per column of samples using
// Silverman's rule of thumb, h_j = (4/(d+2))^(1/(d+4)) * n^(-1/(d+4)) * std_j.
func SilvermanBandwidth(samples mat.Matrix) ([]float64, error) {
	return ruleOfThumb(samples, func(n, d float64) float64 {
		return math.Pow(4/(d+2), 1/(d+4)) * math.Pow(n, -1/(d+4))
	})
}

func ruleOfThumb(samples mat.Matrix, factor func(n, d float64) float64) ([]float64, error) {
	if samples == nil {
		return nil, fmt.Errorf("nil samples: %w", common.ErrorInvalidValue)
	}
	n, d := samples.Dims()
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d: %w", n, common.ErrorInvalidValue)
	}

	f := factor(float64(n), float64(d))
	res := make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, samples)
		res[j] = f * stat.StdDev(col, nil)
		if err := checkScalarBandwidth(res[j]); err != nil {
			return nil, fmt.Errorf("column %d is constant: %w", j, err)
		}
	}
	return res, nil
}
