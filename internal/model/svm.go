package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// sweeps over the training set before SMO gives up on convergence
const maxSweeps = 200

// SVM is a soft-margin RBF-kernel classifier trained with simplified SMO.
type SVM struct {
	c         float64
	gamma     float64
	tol       float64
	maxPasses int
	seed      int64

	fitted  bool
	support [][]float64
	coef    []float64 // alpha_i * y_i for each support vector
	bias    float64
	kgamma  float64 // gamma actually used
}

func NewSVM(p Params) *SVM {
	s := &SVM{c: p.C, gamma: p.Gamma, tol: p.Tolerance, maxPasses: p.MaxPasses, seed: p.Seed}
	if s.c <= 0 {
		s.c = 1
	}
	if s.tol <= 0 {
		s.tol = 1e-3
	}
	if s.maxPasses <= 0 {
		s.maxPasses = 5
	}
	return s
}

func (s *SVM) Fit(x mat.Matrix, y []int) error {
	n, p, err := checkXY(x, y)
	if err != nil {
		return err
	}
	data := rows(x)

	ones := 0
	for _, v := range y {
		ones += v
	}
	if ones == 0 || ones == n {
		// a single class needs no margin; the bias alone decides
		s.support, s.coef, s.kgamma = nil, nil, s.gamma
		s.bias, s.fitted = float64(2*y[0]-1), true
		return nil
	}

	gamma := s.gamma
	if gamma <= 0 {
		flat := make([]float64, 0, n*p)
		for _, r := range data {
			flat = append(flat, r...)
		}
		v := stat.PopVariance(flat, nil)
		gamma = 1
		if v > 0 {
			gamma = 1 / (float64(p) * v)
		}
	}

	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k.SetSym(i, j, rbf(data[i], data[j], gamma))
		}
	}
	sign := make([]float64, n)
	for i, v := range y {
		sign[i] = float64(2*v - 1)
	}

	alpha := make([]float64, n)
	var b float64
	f := func(i int) float64 {
		sum := b
		for j, a := range alpha {
			if a != 0 {
				sum += a * sign[j] * k.At(j, i)
			}
		}
		return sum
	}

	rng := rand.New(rand.NewSource(s.seed))
	passes := 0
	for sweep := 0; passes < s.maxPasses && sweep < maxSweeps; sweep++ {
		changed := 0
		for i := 0; i < n; i++ {
			ei := f(i) - sign[i]
			if !((sign[i]*ei < -s.tol && alpha[i] < s.c) || (sign[i]*ei > s.tol && alpha[i] > 0)) {
				continue
			}
			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ej := f(j) - sign[j]
			ai, aj := alpha[i], alpha[j]

			var lo, hi float64
			if sign[i] != sign[j] {
				lo, hi = math.Max(0, aj-ai), math.Min(s.c, s.c+aj-ai)
			} else {
				lo, hi = math.Max(0, ai+aj-s.c), math.Min(s.c, ai+aj)
			}
			if lo == hi {
				continue
			}
			eta := 2*k.At(i, j) - k.At(i, i) - k.At(j, j)
			if eta >= 0 {
				continue
			}
			alpha[j] = clamp(aj-sign[j]*(ei-ej)/eta, lo, hi)
			if math.Abs(alpha[j]-aj) < 1e-5 {
				alpha[j] = aj
				continue
			}
			alpha[i] = ai + sign[i]*sign[j]*(aj-alpha[j])

			b1 := b - ei - sign[i]*(alpha[i]-ai)*k.At(i, i) - sign[j]*(alpha[j]-aj)*k.At(i, j)
			b2 := b - ej - sign[i]*(alpha[i]-ai)*k.At(i, j) - sign[j]*(alpha[j]-aj)*k.At(j, j)
			switch {
			case alpha[i] > 0 && alpha[i] < s.c:
				b = b1
			case alpha[j] > 0 && alpha[j] < s.c:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			changed++
		}
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	s.support, s.coef = s.support[:0], s.coef[:0]
	for i, a := range alpha {
		if a > 0 {
			s.support = append(s.support, data[i])
			s.coef = append(s.coef, a*sign[i])
		}
	}
	s.bias, s.kgamma, s.fitted = b, gamma, true
	return nil
}

func (s *SVM) Predict(x mat.Matrix) ([]int, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	data := rows(x)
	if len(s.support) > 0 && len(data) > 0 && len(data[0]) != len(s.support[0]) {
		return nil, fmt.Errorf("model: fitted on %d features, got %d", len(s.support[0]), len(data[0]))
	}
	out := make([]int, len(data))
	for i, row := range data {
		sum := s.bias
		for j, sv := range s.support {
			sum += s.coef[j] * rbf(sv, row, s.kgamma)
		}
		if sum > 0 {
			out[i] = 1
		}
	}
	return out, nil
}

func (s *SVM) Score(x mat.Matrix, y []int) (float64, error) {
	return accuracy(s, x, y)
}

// Gamma reports the kernel coefficient chosen by the last Fit.
func (s *SVM) Gamma() float64 { return s.kgamma }

func rbf(a, b []float64, gamma float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Exp(-gamma * d * d)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
