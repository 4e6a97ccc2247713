package feature

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

var (
	sexCodes      = map[string]int{"male": 0, "female": 1}
	embarkedCodes = map[string]int{"S": 0, "C": 1, "Q": 2}
)

// Transformer turns a raw passenger frame into integer-coded features.
// It holds no per-call state and is safe for concurrent use as long as
// the degraded callback is.
type Transformer struct {
	log        *zap.Logger
	onDegraded func(feature string)
}

type Option func(*Transformer)

func WithLogger(l *zap.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.log = l
		}
	}
}

// OnDegraded is called with the feature name whenever an optional feature is skipped.
func OnDegraded(fn func(feature string)) Option {
	return func(t *Transformer) { t.onDegraded = fn }
}

func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{log: zap.NewNop()}
	for _, o := range opts {
		o(t)
	}
	return t
}

type step struct {
	name string
	fn   func(dataframe.DataFrame) (dataframe.DataFrame, error)
}

// Transform runs the fixed step sequence over df. The input frame is not modified.
func (t *Transformer) Transform(df dataframe.DataFrame, evaluation bool) (Dataset, error) {
	if df.Err != nil {
		return Dataset{}, fmt.Errorf("feature: input frame: %w", df.Err)
	}
	if has(df, Title) || has(df, Family) {
		return Dataset{}, ErrAlreadyTransformed
	}
	if err := requireColumns(df, Pclass, Age, Fare, Embarked); err != nil {
		return Dataset{}, err
	}
	if evaluation {
		if err := requireColumns(df, PassengerID); err != nil {
			return Dataset{}, err
		}
	}

	steps := []step{
		{"title", t.title},
		{"age", ageBands},
		{"family", t.family},
		{"sex", t.sex},
		{"embarked", embarked},
		{"fare", fareBands},
		{"prune", prune(evaluation)},
	}
	out := df
	for _, s := range steps {
		next, err := s.fn(out)
		if err != nil {
			return Dataset{}, fmt.Errorf("feature %s: %w", s.name, err)
		}
		out = next
	}
	t.log.Debug("frame transformed",
		zap.Bool("evaluation", evaluation),
		zap.Int("rows", out.Nrow()),
		zap.Strings("columns", out.Names()))
	return Dataset{Frame: out, Evaluation: evaluation}, nil
}

func (t *Transformer) degraded(feature string, level func(string, ...zap.Field), msg string) {
	level(msg, zap.String("feature", feature))
	if t.onDegraded != nil {
		t.onDegraded(feature)
	}
}

func (t *Transformer) title(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !has(df, Name) {
		t.degraded("title", t.log.Warn, "no Name column; title feature omitted")
		return df, nil
	}
	names := df.Col(Name)
	codes := make([]int, names.Len())
	for i := range codes {
		e := names.Elem(i)
		if e.IsNA() {
			codes[i] = TitleRare
			continue
		}
		codes[i] = TitleCode(ExtractTitle(e.String()))
	}
	out := df.Mutate(series.New(codes, series.Int, Title))
	if out.Err != nil {
		return out, out.Err
	}
	return dropPresent(out, Name)
}

func ageBands(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return mapFloats(df, Age, AgeBand)
}

func fareBands(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return mapFloats(df, Fare, FareBand)
}

func mapFloats(df dataframe.DataFrame, col string, fn func(float64) int) (dataframe.DataFrame, error) {
	vals := df.Col(col).Float()
	codes := make([]int, len(vals))
	for i, v := range vals {
		codes[i] = fn(v)
	}
	out := df.Mutate(series.New(codes, series.Int, col))
	return out, out.Err
}

func (t *Transformer) family(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !has(df, SibSp) || !has(df, Parch) {
		t.degraded("family", t.log.Debug, "SibSp/Parch incomplete; family feature omitted")
		return df, nil
	}
	sib, par := df.Col(SibSp).Float(), df.Col(Parch).Float()
	flags := make([]int, len(sib))
	for i := range flags {
		// NaN compares false, so a missing count reads as zero
		if sib[i] > 0 || par[i] > 0 {
			flags[i] = 1
		}
	}
	out := df.Mutate(series.New(flags, series.Int, Family))
	if out.Err != nil {
		return out, out.Err
	}
	return dropPresent(out, SibSp, Parch)
}

func (t *Transformer) sex(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !has(df, Sex) {
		t.degraded("sex", t.log.Warn, "no Sex column; sex feature omitted")
		return df, nil
	}
	return mapCategories(df, Sex, sexCodes)
}

func embarked(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return mapCategories(df, Embarked, embarkedCodes)
}

// mapCategories fills missing values with the column mode and replaces
// every value by its code.
func mapCategories(df dataframe.DataFrame, col string, codes map[string]int) (dataframe.DataFrame, error) {
	vals, missing := categories(df.Col(col))
	fill, err := mode(vals, missing)
	if err != nil {
		return df, fmt.Errorf("%s: %w", col, err)
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		if missing[i] {
			v = fill
		}
		c, ok := codes[v]
		if !ok {
			return df, &CategoryError{Column: col, Value: v, Row: i}
		}
		out[i] = c
	}
	res := df.Mutate(series.New(out, series.Int, col))
	return res, res.Err
}

func categories(s series.Series) ([]string, []bool) {
	n := s.Len()
	vals, missing := make([]string, n), make([]bool, n)
	for i := 0; i < n; i++ {
		e := s.Elem(i)
		if e.IsNA() {
			missing[i] = true
			continue
		}
		v := strings.TrimSpace(e.String())
		if v == "" {
			missing[i] = true
			continue
		}
		vals[i] = v
	}
	return vals, missing
}

// mode returns the most frequent observed value; ties go to the smallest.
func mode(vals []string, missing []bool) (string, error) {
	counts := make(map[string]int)
	for i, v := range vals {
		if !missing[i] {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return "", ErrNoObservedValues
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestN := "", math.MinInt
	for _, k := range keys {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best, nil
}

var transformedColumns = map[string]bool{
	Pclass: true, Sex: true, Age: true, Fare: true,
	Embarked: true, Title: true, Family: true,
}

// prune drops Ticket, Cabin and, outside evaluation, the identifier. Any
// other column not in the transformed set goes as well; the label only
// survives in training mode.
func prune(evaluation bool) func(dataframe.DataFrame) (dataframe.DataFrame, error) {
	return func(df dataframe.DataFrame) (dataframe.DataFrame, error) {
		drop := []string{Ticket, Cabin}
		for _, n := range df.Names() {
			switch {
			case n == PassengerID:
				if !evaluation {
					drop = append(drop, n)
				}
			case n == Survived:
				if evaluation {
					drop = append(drop, n)
				}
			case n == Ticket || n == Cabin:
			case !transformedColumns[n]:
				drop = append(drop, n)
			}
		}
		return dropPresent(df, drop...)
	}
}
