package pipeline

import (
	"fmt"

	"titanic/internal/config"
	"titanic/internal/model"
	"titanic/sink"
	csvsink "titanic/sink/csv"
	"titanic/sink/kafka"
	"titanic/sink/stdout"
)

// Compile builds a Runner from the effective configuration. The predictor
// selection is validated first; an unknown name stops here with a
// *model.UsageError and nothing else is touched.
func Compile(cfg config.Config) (*Runner, error) {
	kind, err := model.ParseKind(cfg.Predictor)
	if err != nil {
		return nil, err
	}
	r := NewRunner()
	r.SetInputs(cfg.Train, cfg.Test)
	r.SetPredictor(kind, model.Params{
		Seed:      cfg.Seed,
		Trees:     cfg.Forest.Trees,
		Features:  cfg.Forest.Features,
		C:         cfg.SVM.C,
		Gamma:     cfg.SVM.Gamma,
		Tolerance: cfg.SVM.Tolerance,
		MaxPasses: cfg.SVM.MaxPasses,
	})

	for _, name := range cfg.Sinks {
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			return nil, err
		}

		var sc any
		switch name {
		case "csv":
			sc = csvsink.Config{Dir: cfg.OutDir, Name: kind.String()}
		case "stdout":
			sc = stdout.Config{PrintCounter: true}
		case "kafka":
			sc = kafka.Config{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				Acks:    cfg.Kafka.RequiredAcks,
				Version: cfg.Kafka.Version,
			}
		default:
			return nil, fmt.Errorf("no config block for sink %q", name)
		}
		r.AddSink(name, sDrv, sc)
	}
	return r, nil
}
