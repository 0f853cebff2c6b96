package kde

import (
	"context"
	"fmt"
	"runtime"

	"github.com/uyouii/weighted-kde/common"
	"github.com/uyouii/weighted-kde/model"
	"github.com/uyouii/weighted-kde/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// WeightedKDE is a product gaussian kernel density estimate over the rows of
// Samples. Weighting is only read when Correction is not CorrectionNone.
type WeightedKDE struct {
	Samples    mat.Matrix
	Bandwidth  []float64
	Weighting  *model.Weighting
	Correction Correction
}

// NewWeightedKDE selects a Scott bandwidth when bandwidth is nil.
func NewWeightedKDE(samples mat.Matrix, bandwidth []float64,
	correction Correction, weighting *model.Weighting) (*WeightedKDE, error) {
	if bandwidth == nil {
		bw, err := ScottBandwidth(samples)
		if err != nil {
			return nil, err
		}
		bandwidth = bw
	}
	if correction != CorrectionNone {
		if err := weighting.Validate(); err != nil {
			return nil, err
		}
	}
	return &WeightedKDE{
		Samples:    samples,
		Bandwidth:  bandwidth,
		Weighting:  weighting,
		Correction: correction,
	}, nil
}

func (k *WeightedKDE) Density(x []float64) (float64, error) {
	switch k.Correction {
	case CorrectionNone:
		return KdeND(x, k.Samples, k.Bandwidth)
	case CorrectionJones:
		if k.Weighting == nil {
			return 0, fmt.Errorf("jones correction without weighting: %w", common.ErrorInvalidValue)
		}
		return WeightedKdeJonesND(x, k.Samples, k.Weighting.Mean, k.Weighting.SD,
			k.Weighting.Exponent, k.Bandwidth)
	case CorrectionBhattacharyya:
		if k.Weighting == nil {
			return 0, fmt.Errorf("bhattacharyya correction without weighting: %w", common.ErrorInvalidValue)
		}
		return WeightedKdeBhattacharyyaND(x, k.Samples, k.Weighting.Mean, k.Weighting.SD,
			k.Weighting.Exponent, k.Bandwidth)
	}
	return 0, fmt.Errorf("unknown correction %v: %w", k.Correction, common.ErrorInvalidValue)
}

// DensityAt evaluates the estimate at every row of points, using at most
// workers goroutines (GOMAXPROCS when workers <= 0). res[i] belongs to row i.
// The first failing row cancels the remaining ones.
func (k *WeightedKDE) DensityAt(ctx context.Context, points mat.Matrix, workers int) ([]float64, error) {
	logger := utils.GetLogger(ctx)

	if points == nil {
		return nil, fmt.Errorf("nil points: %w", common.ErrorInvalidValue)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	n, d := points.Dims()
	res := make([]float64, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			x := mat.Row(make([]float64, d), i, points)
			v, err := k.Density(x)
			if err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			res[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("DensityAt failed", zap.Error(err), zap.Int("points", n),
			zap.Stringer("correction", k.Correction), zap.Int("workers", workers))
		return nil, err
	}
	return res, nil
}
