package qmap

import (
	"context"
	"fmt"

	"github.com/uyouii/quantile-mapping/common"
	"github.com/uyouii/quantile-mapping/model"
	"github.com/uyouii/quantile-mapping/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type TrainOptions struct {
	Kind      model.CorrectionKind
	GroupSpec string
	// Window widens each periodic group by ±Window neighboring periods.
	Window        int
	QuantileCount int
	// Threshold excludes training values below it from quantile estimation.
	// Multiplicative kind only.
	Threshold float64
}

func (opt *TrainOptions) Validate() error {
	if opt == nil {
		return fmt.Errorf("%w: nil train options", common.ErrorInvalidConfig)
	}
	if !opt.Kind.Valid() {
		return fmt.Errorf("%w: correction kind %d", common.ErrorInvalidConfig, int(opt.Kind))
	}
	if opt.QuantileCount < 1 {
		return fmt.Errorf("%w: quantile count %d", common.ErrorInvalidConfig, opt.QuantileCount)
	}
	if opt.Threshold < 0 {
		return fmt.Errorf("%w: negative threshold %v", common.ErrorInvalidConfig, opt.Threshold)
	}
	if opt.Threshold > 0 && opt.Kind != model.MultiplicativeCorrection {
		return fmt.Errorf("%w: threshold is only valid for the multiplicative kind", common.ErrorInvalidConfig)
	}
	return nil
}

// Train estimates the per-group quantiles of both series and builds the
// correction factor table. The two series need not be time-aligned: quantile
// mapping matches distributions, not pairs, but both series must cover the
// same group set.
func Train(ctx context.Context, sim, obs *model.TimeSeries,
	opt *TrainOptions) (table *model.CorrectionFactorTable, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Train recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			table, err = nil, fmt.Errorf("%w: panic during training", common.ErrorTrainingData)
		}
	}()

	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if err := sim.Validate(); err != nil {
		return nil, fmt.Errorf("sim series: %w", err)
	}
	if err := obs.Validate(); err != nil {
		return nil, fmt.Errorf("obs series: %w", err)
	}

	grouper, err := NewGrouper(opt.GroupSpec, opt.Window)
	if err != nil {
		return nil, err
	}
	levels, err := QuantileLevels(opt.QuantileCount)
	if err != nil {
		return nil, err
	}

	simGroups := grouper.Split(sim)
	obsGroups := grouper.Split(obs)

	if missing := groupSetDiff(simGroups, obsGroups); len(missing) > 0 {
		logger.Error("obs series missing groups covered by sim", zap.Ints("groups", missing))
		return nil, fmt.Errorf("%w: obs series missing groups %v", common.ErrorTrainingData, missing)
	}
	if missing := groupSetDiff(obsGroups, simGroups); len(missing) > 0 {
		logger.Error("sim series missing groups covered by obs", zap.Ints("groups", missing))
		return nil, fmt.Errorf("%w: sim series missing groups %v", common.ErrorTrainingData, missing)
	}

	records := make([]model.CorrectionRecord, 0, len(simGroups)*len(levels))
	undefinedCnt := 0

	for _, group := range sortedGroupKeys(simGroups) {
		simVals, obsVals := simGroups[group], obsGroups[group]
		if opt.Threshold > 0 {
			simVals = clipBelowThreshold(simVals, opt.Threshold)
			obsVals = clipBelowThreshold(obsVals, opt.Threshold)
		}

		simQuantiles, err := EstimateQuantiles(simVals, levels)
		if err != nil {
			return nil, fmt.Errorf("sim group %d: %w", group, err)
		}
		obsQuantiles, err := EstimateQuantiles(obsVals, levels)
		if err != nil {
			return nil, fmt.Errorf("obs group %d: %w", group, err)
		}

		logger.Debug("trained group",
			zap.Int("group", group),
			zap.Int("simCnt", len(simVals)), zap.Int("obsCnt", len(obsVals)),
			zap.Float64("simMean", utils.FormatFloat(stat.Mean(simVals, nil), 3)),
			zap.Float64("obsMean", utils.FormatFloat(stat.Mean(obsVals, nil), 3)),
			zap.Float64("simMin", floats.Min(simQuantiles)),
			zap.Float64("simMax", floats.Max(simQuantiles)))

		for i, level := range levels {
			record := model.CorrectionRecord{
				Group:    group,
				Quantile: level,
				SimValue: simQuantiles[i],
			}
			correction, defined := GetCorrection(simQuantiles[i], obsQuantiles[i], opt.Kind)
			if defined {
				record.Correction = correction
			} else {
				record.Undefined = true
				undefinedCnt++
			}
			records = append(records, record)
		}
	}

	if undefinedCnt > 0 {
		logger.Warn("training produced undefined multiplicative corrections",
			zap.Int("cnt", undefinedCnt))
	}

	return &model.CorrectionFactorTable{
		Kind:      opt.Kind,
		GroupSpec: grouper.Spec(),
		Window:    grouper.Window(),
		Threshold: opt.Threshold,
		Quantiles: levels,
		Records:   records,
	}, nil
}
