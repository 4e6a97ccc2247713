// Package model holds the trainable predictors behind a single
// Fit/Score/Predict capability. The set of variants is closed; callers pick
// one with ParseKind and build it with New.
package model

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrNotFitted is returned by Score and Predict before a successful Fit.
var ErrNotFitted = errors.New("model: predictor is not fitted")

type Predictor interface {
	Fit(x mat.Matrix, y []int) error
	// Score returns the accuracy of Predict(x) against y, in [0,1].
	Score(x mat.Matrix, y []int) (float64, error)
	Predict(x mat.Matrix) ([]int, error)
}

type Kind int

const (
	RandomForest Kind = iota
	SupportVector
)

// DefaultKind is used when no predictor is named.
const DefaultKind = RandomForest

func (k Kind) String() string {
	switch k {
	case RandomForest:
		return "rf"
	case SupportVector:
		return "svm"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Describe is the human-readable name used in usage text.
func (k Kind) Describe() string {
	switch k {
	case RandomForest:
		return "Random Forest Classifier"
	case SupportVector:
		return "Support Vector Machine"
	default:
		return k.String()
	}
}

// Kinds lists every variant in display order.
func Kinds() []Kind { return []Kind{SupportVector, RandomForest} }

// UsageError reports an unrecognised predictor selection.
type UsageError struct {
	Given string
}

func (e *UsageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unknown predictor %q. Please choose one of the following:", e.Given)
	for _, k := range Kinds() {
		fmt.Fprintf(&b, "\n\t%s\t\t%s", k, k.Describe())
	}
	return b.String()
}

// ParseKind maps a selection to a Kind. The empty string selects DefaultKind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultKind, nil
	case "rf":
		return RandomForest, nil
	case "svm":
		return SupportVector, nil
	default:
		return 0, &UsageError{Given: s}
	}
}

// Params carries the settings of every variant; each reads its own fields.
type Params struct {
	Seed int64

	Trees    int
	Features int // per tree; 0 = floor(sqrt(columns))

	C         float64
	Gamma     float64 // 0 = 1/(features*Var(X))
	Tolerance float64
	MaxPasses int
}

func New(kind Kind, p Params) (Predictor, error) {
	switch kind {
	case RandomForest:
		return NewForest(p), nil
	case SupportVector:
		return NewSVM(p), nil
	default:
		return nil, fmt.Errorf("model: unsupported predictor %v", kind)
	}
}

// checkXY validates shapes and that every label is 0 or 1.
func checkXY(x mat.Matrix, y []int) (int, int, error) {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.New("model: empty feature matrix")
	}
	if len(y) != r {
		return 0, 0, fmt.Errorf("model: %d rows but %d labels", r, len(y))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return 0, 0, fmt.Errorf("model: label %d at row %d is not 0 or 1", v, i)
		}
	}
	return r, c, nil
}

func accuracy(p Predictor, x mat.Matrix, y []int) (float64, error) {
	if r, _ := x.Dims(); r != len(y) {
		return 0, fmt.Errorf("model: %d rows but %d labels", r, len(y))
	}
	pred, err := p.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(pred) == 0 {
		return 0, nil
	}
	hit := 0
	for i, v := range pred {
		if v == y[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(pred)), nil
}

func rows(x mat.Matrix) [][]float64 {
	r, _ := x.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, x)
	}
	return out
}
