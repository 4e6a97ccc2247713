package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"titanic/internal/feature"
	"titanic/internal/logging"
	"titanic/internal/model"
	"titanic/internal/telemetry"
	"titanic/sink"
	"titanic/source/csvfile"
)

// Report summarises one run.
type Report struct {
	Predictor model.Kind
	Score     float64 // training accuracy
	TrainRows int
	EvalRows  int
	Output    string // path of the first file-backed sink, if any
}

type stage struct {
	name string
	sink sink.Adapter
	cfg  any
}

type Runner struct {
	train, test string
	kind        model.Kind
	params      model.Params

	transformer *feature.Transformer
	metrics     *telemetry.Metrics
	log         *zap.Logger
	newModel    func(model.Kind, model.Params) (model.Predictor, error)

	sinks []stage
}

func NewRunner() *Runner {
	r := &Runner{
		metrics:  telemetry.New(),
		log:      logging.L(),
		newModel: model.New,
	}
	r.wire()
	return r
}

// wire rebuilds the transformer around the current logger and metrics.
func (r *Runner) wire() {
	m := r.metrics
	r.transformer = feature.NewTransformer(
		feature.WithLogger(r.log),
		feature.OnDegraded(func(f string) { m.DegradedFeatures.WithLabelValues(f).Inc() }),
	)
}

func (r *Runner) SetInputs(train, test string) { r.train, r.test = train, test }

func (r *Runner) SetPredictor(kind model.Kind, p model.Params) { r.kind, r.params = kind, p }

func (r *Runner) SetMetrics(m *telemetry.Metrics) {
	r.metrics = m
	r.wire()
}

func (r *Runner) SetLogger(l *zap.Logger) {
	r.log = l
	r.wire()
}

func (r *Runner) Metrics() *telemetry.Metrics { return r.metrics }

// AddSink queues a sink; it is configured with cfg only once predictions exist.
func (r *Runner) AddSink(name string, s sink.Adapter, cfg any) {
	r.sinks = append(r.sinks, stage{name: name, sink: s, cfg: cfg})
}

// Run executes load → transform → fit → predict → emit once.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	rep := Report{Predictor: r.kind}
	if len(r.sinks) == 0 {
		return rep, errNoSinks
	}
	if err := csvfile.CheckPath(r.train); err != nil {
		return rep, err
	}
	if err := csvfile.CheckPath(r.test); err != nil {
		return rep, err
	}

	var train, eval feature.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		train, err = r.prepare(gctx, r.train, false)
		return err
	})
	g.Go(func() (err error) {
		eval, err = r.prepare(gctx, r.test, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return rep, err
	}
	rep.TrainRows, rep.EvalRows = train.Len(), eval.Len()

	xdf, y, err := train.FeaturesAndLabel()
	if err != nil {
		return rep, fmt.Errorf("training set: %w", err)
	}
	edf, _, err := eval.FeaturesAndLabel()
	if err != nil {
		return rep, fmt.Errorf("evaluation set: %w", err)
	}
	ids, err := eval.Identifiers()
	if err != nil {
		return rep, fmt.Errorf("evaluation set: %w", err)
	}
	x, xe, err := matrices(xdf, edf)
	if err != nil {
		return rep, err
	}

	pred, err := r.newModel(r.kind, r.params)
	if err != nil {
		return rep, err
	}
	if err := pred.Fit(x, y); err != nil {
		return rep, fmt.Errorf("fit %s: %w", r.kind, err)
	}
	score, err := pred.Score(x, y)
	if err != nil {
		return rep, fmt.Errorf("score %s: %w", r.kind, err)
	}
	rep.Score = score
	r.metrics.TrainingScore.WithLabelValues(r.kind.String()).Set(score)
	r.log.Info("predictor trained",
		zap.Stringer("predictor", r.kind),
		zap.Float64("score", math.Round(score*1000)/1000),
		zap.Int("rows", rep.TrainRows))

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	labels, err := pred.Predict(xe)
	if err != nil {
		return rep, fmt.Errorf("predict %s: %w", r.kind, err)
	}

	out, err := r.emit(ids, labels)
	rep.Output = out
	return rep, err
}

func (r *Runner) prepare(ctx context.Context, path string, evaluation bool) (feature.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return feature.Dataset{}, err
	}
	df, err := csvfile.Load(path)
	if err != nil {
		return feature.Dataset{}, err
	}
	ds, err := r.transformer.Transform(df, evaluation)
	if err != nil {
		return feature.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	set := "train"
	if evaluation {
		set = "eval"
	}
	r.metrics.RowsTransformed.WithLabelValues(set).Add(float64(ds.Len()))
	r.log.Debug("dataset ready", zap.String("set", set), zap.String("path", path), zap.Int("rows", ds.Len()))
	return ds, nil
}

// matrices builds both feature matrices and insists on the same columns in
// the same order, so the fitted model sees evaluation features as trained.
func matrices(train, eval dataframe.DataFrame) (x, xe *mat.Dense, err error) {
	x, tcols, err := feature.Matrix(train)
	if err != nil {
		return nil, nil, fmt.Errorf("training features: %w", err)
	}
	xe, ecols, err := feature.Matrix(eval, feature.PassengerID)
	if err != nil {
		return nil, nil, fmt.Errorf("evaluation features: %w", err)
	}
	if !slices.Equal(tcols, ecols) {
		return nil, nil, fmt.Errorf("feature columns differ: training %v, evaluation %v", tcols, ecols)
	}
	return x, xe, nil
}

func (r *Runner) emit(ids []string, labels []int) (string, error) {
	if len(ids) != len(labels) {
		return "", fmt.Errorf("%d identifiers but %d predictions", len(ids), len(labels))
	}
	var (
		result *multierror.Error
		out    string
		open   []stage
	)
	for _, s := range r.sinks {
		if err := s.sink.Configure(s.cfg); err != nil {
			result = multierror.Append(result, fmt.Errorf("sink %s: %w", s.name, err))
			break
		}
		open = append(open, s)
	}
	if result == nil {
	push:
		for i, id := range ids {
			p := sink.Prediction{PassengerID: id, Survived: labels[i]}
			for _, s := range open {
				if err := s.sink.Push(p); err != nil {
					result = multierror.Append(result, fmt.Errorf("sink %s: %w", s.name, err))
					break push
				}
			}
			r.metrics.Predictions.WithLabelValues(strconv.Itoa(p.Survived)).Inc()
		}
	}

	// a failed emit leaves no partial output behind
	if result != nil {
		for _, s := range open {
			release := s.sink.Close
			if a, ok := s.sink.(sink.Aborter); ok {
				release = a.Abort
			}
			if err := release(); err != nil {
				result = multierror.Append(result, fmt.Errorf("sink %s release: %w", s.name, err))
			}
		}
		return "", result.ErrorOrNil()
	}

	for _, s := range open {
		if err := s.sink.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("sink %s close: %w", s.name, err))
		}
		if l, ok := s.sink.(sink.Located); ok && out == "" {
			out = l.Path()
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return out, err
	}
	r.log.Info("predictions written", zap.Int("rows", len(ids)), zap.String("output", out))
	return out, nil
}

var errNoSinks = errors.New("runner: no sinks configured")
