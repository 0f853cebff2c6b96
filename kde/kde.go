package kde

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/weighted-kde/common"
	"github.com/uyouii/weighted-kde/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/integrate/quad"
)

// Correction selects how a sampling bias is removed from the estimate.
type Correction int

const (
	CorrectionNone Correction = iota
	// CorrectionJones weights every sample by 1/w(sample).
	CorrectionJones
	// CorrectionBhattacharyya weights the estimate by 1/w(x).
	CorrectionBhattacharyya
)

func (c Correction) String() string {
	switch c {
	case CorrectionNone:
		return "none"
	case CorrectionJones:
		return "jones"
	case CorrectionBhattacharyya:
		return "bhattacharyya"
	}
	return fmt.Sprintf("Correction(%d)", int(c))
}

// KDEUnivariate is a one dimensional density estimate evaluated on a grid.
type KDEUnivariate struct {
	// endogenous variable, sorted copy of the samples
	Endog []float64

	//If gridsize is 0, max(len(x), 100) is used.
	gridSize int

	// An adjustment factor for the bw. Bandwidth becomes bw * adjust.
	bwAdjust float64

	// fixed bandwidth, the normal reference rule is used when it is 0
	fixedBw float64

	// Defines the length of the grid past the lowest and highest values
	// of x so that the kernel goes to zero. The end points are
	// ``min(x) - cut * adjust * bw`` and ``max(x) + cut * adjust * bw``.
	cut float64

	correction Correction
	weighting  *model.Weighting

	density []model.Density
	cdf     []model.Cdf
	grid    []float64
	bw      float64
	mass    float64
	fited   bool
}

type Option func(*KDEUnivariate)

// WithCorrection removes the sampling bias described by a one dimensional weighting.
func WithCorrection(correction Correction, weighting *model.Weighting) Option {
	return func(k *KDEUnivariate) {
		k.correction = correction
		k.weighting = weighting
	}
}

func WithGridSize(gridSize int) Option {
	return func(k *KDEUnivariate) {
		k.gridSize = gridSize
	}
}

// WithBandwidth skips bandwidth selection. bwAdjust still applies.
func WithBandwidth(bw float64) Option {
	return func(k *KDEUnivariate) {
		k.fixedBw = bw
	}
}

func NewKDEUnivariate(samples []float64, bwAdjust float64, cut float64,
	clip *model.Clip, opts ...Option) (*KDEUnivariate, error) {
	endog := Clip(append([]float64(nil), samples...), clip)
	if len(endog) == 0 {
		return nil, fmt.Errorf("no samples left after clip: %w", common.ErrorInvalidValue)
	}
	sort.Float64s(endog)

	if bwAdjust == 0 {
		bwAdjust = 1
	}
	if err := checkScalarBandwidth(bwAdjust); err != nil {
		return nil, fmt.Errorf("bwAdjust: %w", err)
	}

	if cut == 0 {
		cut = KdeDefaultCut
	}

	kde := &KDEUnivariate{
		bwAdjust: bwAdjust,
		cut:      cut,
		Endog:    endog,
	}
	for _, opt := range opts {
		opt(kde)
	}

	if kde.gridSize <= 0 {
		kde.gridSize = IntMax(len(endog), KdeMinGridSize)
	}
	if kde.fixedBw != 0 {
		if err := checkScalarBandwidth(kde.fixedBw); err != nil {
			return nil, err
		}
	}
	if kde.correction != CorrectionNone {
		if err := kde.weighting.Validate(); err != nil {
			return nil, err
		}
		if kde.weighting.Dim() != 1 {
			return nil, fmt.Errorf("univariate kde needs a 1 dim weighting, got %d: %w",
				kde.weighting.Dim(), common.ErrorDimensionMismatch)
		}
	}

	return kde, nil
}

func (kde *KDEUnivariate) Correction() Correction {
	return kde.correction
}

// Evaluate returns the estimate at every x with the configured correction.
func (kde *KDEUnivariate) Evaluate(x []float64) ([]float64, error) {
	bw, err := kde.bandwidth()
	if err != nil {
		return nil, err
	}
	return kde.evaluate(x, bw)
}

func (kde *KDEUnivariate) evaluate(x []float64, bw float64) ([]float64, error) {
	switch kde.correction {
	case CorrectionNone:
		return Kde1D(x, kde.Endog, bw)
	case CorrectionJones:
		w := kde.weighting
		return WeightedKdeJones1D(x, kde.Endog, w.Mean[0], w.SD[0], w.Exponent, bw)
	case CorrectionBhattacharyya:
		w := kde.weighting
		return WeightedKdeBhattacharyya1D(x, kde.Endog, w.Mean[0], w.SD[0], w.Exponent, bw)
	}
	return nil, fmt.Errorf("unknown correction %v: %w", kde.correction, common.ErrorInvalidValue)
}

func (kde *KDEUnivariate) bandwidth() (float64, error) {
	if kde.bw != 0 {
		return kde.bw, nil
	}
	bw := kde.fixedBw
	if bw == 0 {
		bw = NewNormalReferenceBandWidth(NewGuassianKernel()).BandWidth(kde.Endog)
	}
	bw = bw * kde.bwAdjust
	if err := checkScalarBandwidth(bw); err != nil {
		return 0, fmt.Errorf("selected bandwidth for %d samples: %w", len(kde.Endog), err)
	}
	kde.bw = bw
	return bw, nil
}

func (kde *KDEUnivariate) Kdensity() ([]model.Density, float64, error) {
	if kde.fited {
		return kde.density, kde.bw, nil
	}

	bw, err := kde.bandwidth()
	if err != nil {
		return nil, 0, err
	}

	a := floats.Min(kde.Endog) - kde.cut*bw
	b := floats.Max(kde.Endog) + kde.cut*bw
	grid := linspace(a, b, kde.gridSize)

	dens, err := kde.evaluate(grid, bw)
	if err != nil {
		return nil, 0, err
	}

	res := []model.Density{}
	for i := 0; i < len(dens); i++ {
		res = append(res, model.Density{
			X:     grid[i],
			Value: dens[i],
		})
	}

	kde.density = res
	kde.grid = grid
	kde.mass = integrate.Trapezoidal(grid, dens)
	kde.fited = true

	return res, bw, nil
}

// Mass is the integral of the estimate over the grid. It is close to 1 for an
// uncorrected estimate, corrected estimates are not normalized.
func (kde *KDEUnivariate) Mass() (float64, error) {
	if _, _, err := kde.Kdensity(); err != nil {
		return 0, err
	}
	return kde.mass, nil
}

// Cdf integrates the estimate cell by cell over the grid and normalizes it by
// the total mass, so the last value is 1.
func (kde *KDEUnivariate) Cdf() ([]model.Cdf, error) {
	if _, _, err := kde.Kdensity(); err != nil {
		return nil, err
	}

	if len(kde.cdf) > 0 {
		return kde.cdf, nil
	}

	var evalErr error
	point := make([]float64, 1)
	f := func(x float64) float64 {
		point[0] = x
		v, err := kde.evaluate(point, kde.bw)
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return math.NaN()
		}
		return v[0]
	}

	gridsize := len(kde.grid)
	res := []model.Cdf{{X: kde.grid[0], Value: 0}}

	var cumSum float64

	for i := 1; i < gridsize; i++ {
		integral := quad.Fixed(f, kde.grid[i-1], kde.grid[i], KdeQuadratureOrder, nil, 1)
		if evalErr != nil {
			return nil, evalErr
		}
		cumSum += integral
		res = append(res, model.Cdf{
			X:     kde.grid[i],
			Value: cumSum,
		})
	}

	if !(cumSum > 0) || math.IsInf(cumSum, 0) {
		return nil, fmt.Errorf("cdf total mass %v: %w", cumSum, common.ErrorNumericDegeneracy)
	}
	for i := range res {
		res[i].Value /= cumSum
	}

	kde.cdf = res
	return res, nil
}

func (kde *KDEUnivariate) Quantile(p float64) (*model.QuantileValue, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, fmt.Errorf("quantile %v: %w", p, common.ErrorInvalidValue)
	}

	cdf, err := kde.Cdf()
	if err != nil {
		return nil, err
	}

	if p <= cdf[0].Value {
		return &model.QuantileValue{
			Quantile: p,
			Value:    cdf[0].X,
		}, nil
	}

	if p >= cdf[len(cdf)-1].Value {
		return &model.QuantileValue{
			Quantile: p,
			Value:    cdf[len(cdf)-1].X,
		}, nil
	}

	for i := 1; i < len(cdf); i++ {
		if cdf[i].Value > p {
			lowerX, lowerP := cdf[i-1].X, cdf[i-1].Value
			upperX, upperP := cdf[i].X, cdf[i].Value
			value := lowerX + (upperX-lowerX)*(p-lowerP)/(upperP-lowerP)
			return &model.QuantileValue{
				Quantile: p,
				Value:    value,
			}, nil
		}
	}
	return &model.QuantileValue{
		Quantile: p,
		Value:    cdf[len(cdf)-1].X,
	}, nil
}
