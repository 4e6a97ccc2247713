package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"titanic/internal/config"
	"titanic/internal/ledger"
	"titanic/internal/logging"
	"titanic/internal/pipeline"
	"titanic/internal/telemetry"
)

func Bootstrap(ctx context.Context, cfg config.Config) (*Engine, error) {
	// 1. logger; left as InitFromEnv set it when the config is silent
	if cfg.Log != (logging.Options{}) {
		logging.Configure(cfg.Log)
	}
	log := logging.L().With(zap.String("component", "engine"))

	// 2. pipeline runner; an unknown predictor fails here untouched
	runner, err := pipeline.Compile(cfg)
	if err != nil {
		return nil, err
	}
	runner.SetLogger(logging.L())

	// 3. metrics
	metrics := telemetry.New()
	runner.SetMetrics(metrics)

	// 4. run history
	var store *ledger.Store
	if cfg.Ledger != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		store, err = ledger.Open(cfg.Ledger)
		if err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
	}

	log.Debug("bootstrapped",
		zap.String("train", cfg.Train),
		zap.String("test", cfg.Test),
		zap.Strings("sinks", cfg.Sinks),
		zap.Bool("ledger", store != nil))

	return &Engine{
		cfg:     cfg,
		runner:  runner,
		metrics: metrics,
		ledger:  store,
		log:     log,
	}, nil
}
