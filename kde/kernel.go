package kde

import (
	"fmt"
	"math"

	"github.com/uyouii/weighted-kde/common"
	"gonum.org/v1/gonum/stat/distuv"
)

type Kernel interface {
	NormalReferenceConstant() float64
}

type GuassianKernel struct {
	l2Norm                  float64
	kernelVar               float64
	order                   int
	normalReferenceConstant float64
	h                       float64
}

func NewGuassianKernel() *GuassianKernel {
	return &GuassianKernel{
		l2Norm:                  1.0 / (2.0 * math.Sqrt(math.Pi)),
		kernelVar:               1.0,
		order:                   2.0,
		normalReferenceConstant: 0,
		h:                       1.0,
	}
}

func (k *GuassianKernel) SetH(h float64) {
	k.h = h
}

func (k *GuassianKernel) H() float64 {
	return k.h
}

// Shape is the standard normal density.
func (k *GuassianKernel) Shape(x float64) float64 {
	return 0.3989422804014327 * math.Exp(-x*x/2.0)
}

func (k *GuassianKernel) LogShape(x float64) float64 {
	return distuv.UnitNormal.LogProb(x)
}

// Sum returns sum(Shape((x - xi) / h)) over xs.
func (k *GuassianKernel) Sum(xs []float64, x float64) float64 {
	var sum float64
	for _, xi := range xs {
		sum += k.Shape((x - xi) / k.h)
	}
	return sum
}

func (k *GuassianKernel) NormalReferenceConstant() float64 {
	nu := k.order
	if k.normalReferenceConstant == 0 {
		numerator := math.Pow(math.Pi, 0.5) * math.Pow(factorial(nu), 3) * k.l2Norm
		denom := 2.0 * float64(nu) * factorial(2*nu) * math.Pow(k.Moments(nu), 2)
		C := 2 * math.Pow(numerator/denom, 1.0/float64(2*nu+1))
		k.normalReferenceConstant = C
	}
	return k.normalReferenceConstant
}

func (k *GuassianKernel) Moments(n int) float64 {
	if n == 1 {
		return 0
	}
	if n == 2 {
		return k.kernelVar
	}
	return 1.0
}

// ProductKernel returns the unnormalized product gaussian kernel
//
//	prod_i phi((x_i - sample_i) / bandwidth_i)
//
// x, sample and bandwidth must have the same length.
func ProductKernel(x, sample, bandwidth []float64) (float64, error) {
	lk, err := LogProductKernel(x, sample, bandwidth)
	if err != nil {
		return 0, err
	}
	return math.Exp(lk), nil
}

// LogProductKernel is the log of ProductKernel.
func LogProductKernel(x, sample, bandwidth []float64) (float64, error) {
	if len(x) != len(sample) || len(x) != len(bandwidth) {
		return 0, fmt.Errorf("x has %d dims, sample %d, bandwidth %d: %w",
			len(x), len(sample), len(bandwidth), common.ErrorDimensionMismatch)
	}
	if err := checkBandwidth(bandwidth); err != nil {
		return 0, err
	}
	return logProductKernel(x, sample, bandwidth), nil
}

// logProductKernel expects validated input.
func logProductKernel(x, sample, bandwidth []float64) float64 {
	var res float64
	for i := range x {
		res += distuv.UnitNormal.LogProb((x[i] - sample[i]) / bandwidth[i])
	}
	return res
}

func checkBandwidth(bandwidth []float64) error {
	if len(bandwidth) == 0 {
		return fmt.Errorf("empty bandwidth: %w", common.ErrorInvalidBandwidth)
	}
	for i, bw := range bandwidth {
		if err := checkScalarBandwidth(bw); err != nil {
			return fmt.Errorf("bandwidth[%d]: %w", i, err)
		}
	}
	return nil
}

func checkScalarBandwidth(bw float64) error {
	if !(bw > 0) || math.IsInf(bw, 1) {
		return fmt.Errorf("bandwidth %v must be positive and finite: %w", bw, common.ErrorInvalidBandwidth)
	}
	return nil
}
