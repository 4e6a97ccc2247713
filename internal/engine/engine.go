package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"titanic/internal/config"
	"titanic/internal/ledger"
	"titanic/internal/pipeline"
	"titanic/internal/telemetry"
)

type Engine struct {
	cfg     config.Config
	runner  *pipeline.Runner
	metrics *telemetry.Metrics
	ledger  *ledger.Store
	log     *zap.Logger
}

// Run executes the pipeline once, exports metrics and records the run.
// The engine is closed on return.
func (e *Engine) Run(ctx context.Context) (pipeline.Report, error) {
	defer e.Close()

	rep, err := e.runner.Run(ctx)

	// metrics are exported for failed runs too
	if merr := e.metrics.WriteFile(e.cfg.MetricsFile); merr != nil {
		e.log.Warn("metrics export failed", zap.String("path", e.cfg.MetricsFile), zap.Error(merr))
	}
	if err != nil {
		return rep, err
	}

	if e.ledger != nil {
		run, lerr := e.ledger.Record(ctx, ledger.Run{
			Predictor: rep.Predictor.String(),
			Train:     e.cfg.Train,
			Test:      e.cfg.Test,
			Output:    rep.Output,
			TrainRows: rep.TrainRows,
			EvalRows:  rep.EvalRows,
			Score:     rep.Score,
		})
		if lerr != nil {
			return rep, fmt.Errorf("ledger: %w", lerr)
		}
		e.log.Debug("run recorded", zap.String("run_id", run.ID))
	}
	return rep, nil
}

// Close releases the ledger. Safe to call more than once.
func (e *Engine) Close() error {
	var result *multierror.Error
	if e.ledger != nil {
		if err := e.ledger.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		e.ledger = nil
	}
	return result.ErrorOrNil()
}

// History opens the ledger at path and lists up to limit runs, newest first.
func History(ctx context.Context, path string, limit int) ([]ledger.Run, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger: no path configured")
	}
	store, err := ledger.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	defer store.Close()
	return store.List(ctx, limit)
}
