package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"", RandomForest},
		{"rf", RandomForest},
		{"RF", RandomForest},
		{"svm", SupportVector},
		{" svm ", SupportVector},
	}
	for _, c := range cases {
		got, err := ParseKind(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

// An unknown selection must not fall through to the default variant.
func TestParseKind_UnknownIsUsageError(t *testing.T) {
	k, err := ParseKind("knn")
	var ue *UsageError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, "knn", ue.Given)
	assert.Zero(t, k)
	assert.Contains(t, err.Error(), "svm")
	assert.Contains(t, err.Error(), "Random Forest Classifier")
}

func TestNew_ClosedSet(t *testing.T) {
	p, err := New(RandomForest, Params{})
	require.NoError(t, err)
	assert.IsType(t, &Forest{}, p)

	p, err = New(SupportVector, Params{})
	require.NoError(t, err)
	assert.IsType(t, &SVM{}, p)

	_, err = New(Kind(42), Params{})
	assert.Error(t, err)
}

// separable toy problem: survives when the first feature is high
func toy() (*mat.Dense, []int) {
	x := mat.NewDense(8, 2, []float64{
		0, 1,
		0, 0,
		1, 1,
		1, 0,
		3, 1,
		3, 0,
		4, 1,
		4, 0,
	})
	return x, []int{0, 0, 0, 0, 1, 1, 1, 1}
}

func TestPredictors_FitScorePredict(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			p, err := New(kind, Params{Seed: 7, Trees: 25, Features: 2})
			require.NoError(t, err)

			x, y := toy()
			require.NoError(t, p.Fit(x, y))

			score, err := p.Score(x, y)
			require.NoError(t, err)
			assert.Equal(t, 1.0, score)

			pred, err := p.Predict(mat.NewDense(2, 2, []float64{0, 0.5, 4, 0.5}))
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1}, pred)
		})
	}
}

func TestSVM_Deterministic(t *testing.T) {
	x, y := toy()
	between := mat.NewDense(3, 2, []float64{2, 0, 2, 1, 1.5, 1})
	a, b := NewSVM(Params{Seed: 3}), NewSVM(Params{Seed: 3})
	require.NoError(t, a.Fit(x, y))
	require.NoError(t, b.Fit(x, y))
	pa, err := a.Predict(between)
	require.NoError(t, err)
	pb, err := b.Predict(between)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestPredictors_NotFitted(t *testing.T) {
	x, y := toy()
	for _, kind := range Kinds() {
		p, _ := New(kind, Params{})
		_, err := p.Predict(x)
		assert.ErrorIs(t, err, ErrNotFitted, kind.String())
		_, err = p.Score(x, y)
		assert.ErrorIs(t, err, ErrNotFitted, kind.String())
	}
}

func TestPredictors_RejectBadInput(t *testing.T) {
	x, y := toy()
	for _, kind := range Kinds() {
		p, _ := New(kind, Params{})
		assert.Error(t, p.Fit(x, y[:3]), "label count mismatch")
		bad := append([]int(nil), y...)
		bad[0] = 2
		assert.Error(t, p.Fit(x, bad), "non-binary label")
	}
}

func TestForest_FeatureCountMismatch(t *testing.T) {
	x, y := toy()
	f := NewForest(Params{Trees: 3})
	require.NoError(t, f.Fit(x, y))
	_, err := f.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	assert.Error(t, err)
}

func TestForest_TooManyFeaturesPerTree(t *testing.T) {
	x, y := toy()
	f := NewForest(Params{Trees: 3, Features: 5})
	assert.Error(t, f.Fit(x, y))
}

func TestForest_PredictsEveryRow(t *testing.T) {
	x, y := toy()
	f := NewForest(Params{Trees: 9})
	require.NoError(t, f.Fit(x, y))
	pred, err := f.Predict(x)
	require.NoError(t, err)
	require.Len(t, pred, 8)
	for _, v := range pred {
		assert.Contains(t, []int{0, 1}, v)
	}
}

func TestSVM_SingleClass(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	s := NewSVM(Params{})
	require.NoError(t, s.Fit(x, []int{1, 1, 1}))
	pred, err := s.Predict(mat.NewDense(1, 1, []float64{9}))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pred)
}

func TestSVM_ScaleGamma(t *testing.T) {
	x, y := toy()
	s := NewSVM(Params{})
	require.NoError(t, s.Fit(x, y))
	// the 16 elements have mean 1.25 and population variance 1.9375
	assert.InDelta(t, 1/(2*1.9375), s.Gamma(), 1e-9)
}
