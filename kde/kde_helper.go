package kde

import (
	"context"
	"fmt"
	"math"

	"github.com/uyouii/weighted-kde/common"
	"github.com/uyouii/weighted-kde/model"
	"github.com/uyouii/weighted-kde/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

func getMinCalculatePointCnt() int {
	return KdeMinCalculatePointCnt
}

// CalculateKdeConfidences estimates the density of samples, removing the
// sampling bias described by weighting with the given correction, and
// returns the quantiles in AllCalculateQuantiles.
// Samples further than 3 standard deviations from the mean are dropped.
func CalculateKdeConfidences(ctx context.Context, samples []float64,
	weighting *model.Weighting, correction Correction) (res *model.KdeConfidence, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("CalculateKdeConfidences recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.Int("samples", len(samples)))
			res, err = nil, fmt.Errorf("panic: %v: %w", r, common.ErrorInvalidValue)
		}
	}()

	values := []float64{}
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}

	if len(values) < getMinCalculatePointCnt() {
		logger.Error("point too little, skip calculate", zap.Int("cnt", len(values)))
		return nil, fmt.Errorf("%d finite samples: %w", len(values), common.ErrorInvalidValue)
	}

	mean := stat.Mean(values, nil)
	stddev := stat.StdDev(values, nil)
	clip := &model.Clip{
		Upper: mean + stddev*ClipUpperZScore,
		Lower: mean - stddev*ClipLowerZScore,
	}

	k, err := NewKDEUnivariate(values, 1.0, KdeDefaultCut, clip, WithCorrection(correction, weighting))
	if err != nil {
		logger.Error("NewKDEUnivariate failed", zap.Error(err))
		return nil, err
	}

	calculatedQuantiles := map[string]*model.QuantileValue{}

	for _, value := range AllCalculateQuantiles {
		quantile, err := k.Quantile(value)
		if err != nil {
			logger.Error("kde Quantile failed", zap.Error(err), zap.Float64("value", value),
				zap.Stringer("correction", correction))
			return nil, err
		}
		quantile.Value = utils.FormatFloat(quantile.Value, 3)
		calculatedQuantiles[fmt.Sprintf("%v", value)] = quantile
	}

	return &model.KdeConfidence{
		QuantileValues: calculatedQuantiles,
	}, nil
}
