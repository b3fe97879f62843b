package qmap

import (
	"context"
	"fmt"

	"github.com/uyouii/quantile-mapping/common"
	"github.com/uyouii/quantile-mapping/model"
)

type Config struct {
	Kind          model.CorrectionKind
	GroupSpec     string  // defaults to GroupWhole
	Window        int     // periodic specs only
	QuantileCount int     // defaults to DefaultQuantileCount
	Threshold     float64 // multiplicative kind only
	Interp        InterpMode
}

// QuantileMapping owns a correction table and the configuration that built
// it. Train replaces the table, Predict only reads it, so a trained instance
// can serve concurrent Predict calls.
type QuantileMapping struct {
	cfg   Config
	table *model.CorrectionFactorTable
}

func NewQuantileMapping(cfg *Config) (*QuantileMapping, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", common.ErrorInvalidConfig)
	}

	c := *cfg
	if c.GroupSpec == "" {
		c.GroupSpec = GroupWhole
	}
	if c.QuantileCount == 0 {
		c.QuantileCount = DefaultQuantileCount
	}
	if c.Interp == "" {
		c.Interp = InterpLinear
	}

	if !c.Interp.Valid() {
		return nil, fmt.Errorf("%w: interp mode %q", common.ErrorInvalidConfig, string(c.Interp))
	}
	if err := c.trainOptions().Validate(); err != nil {
		return nil, err
	}
	if _, err := NewGrouper(c.GroupSpec, c.Window); err != nil {
		return nil, err
	}

	return &QuantileMapping{cfg: c}, nil
}

func (c *Config) trainOptions() *TrainOptions {
	return &TrainOptions{
		Kind:          c.Kind,
		GroupSpec:     c.GroupSpec,
		Window:        c.Window,
		QuantileCount: c.QuantileCount,
		Threshold:     c.Threshold,
	}
}

// Train builds a new correction table; a previous table is discarded.
func (qm *QuantileMapping) Train(ctx context.Context, sim, obs *model.TimeSeries) error {
	table, err := Train(ctx, sim, obs, qm.cfg.trainOptions())
	if err != nil {
		return err
	}
	qm.table = table
	return nil
}

func (qm *QuantileMapping) Predict(ctx context.Context,
	sim *model.TimeSeries) (*model.TimeSeries, *PredictStats, error) {
	if !qm.Trained() {
		return nil, nil, common.ErrorNotTrained
	}
	return Predict(ctx, sim, qm.table, qm.cfg.Interp)
}

func (qm *QuantileMapping) Trained() bool {
	return !qm.table.IsEmpty()
}

func (qm *QuantileMapping) Table() *model.CorrectionFactorTable {
	return qm.table
}

// LoadTable installs a persisted table, e.g. one decoded with
// model.DecodeTable, so prediction can run without retraining.
func (qm *QuantileMapping) LoadTable(table *model.CorrectionFactorTable) error {
	if table.IsEmpty() {
		return fmt.Errorf("%w: empty correction table", common.ErrorInvalidValue)
	}
	if !table.Kind.Valid() {
		return fmt.Errorf("%w: correction kind %d", common.ErrorInvalidConfig, int(table.Kind))
	}
	if _, err := NewGrouper(table.GroupSpec, table.Window); err != nil {
		return err
	}
	qm.cfg.Kind = table.Kind
	qm.cfg.GroupSpec = table.GroupSpec
	qm.cfg.Window = table.Window
	qm.cfg.Threshold = table.Threshold
	qm.table = table
	return nil
}
