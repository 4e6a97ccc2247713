package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/meta"
	"github.com/sjwhitworth/golearn/trees"
	"gonum.org/v1/gonum/mat"
)

// Forest is golearn's random forest: ID3 trees with numeric splits, each
// fitted on a bootstrap sample and a random feature subset, combined by vote.
// golearn draws from the global math/rand source, so fits are not
// reproducible from Params.Seed.
type Forest struct {
	trees    int
	features int

	bag   *meta.BaggedModel
	shape *base.DenseInstances // empty copy of the training attributes
	width int
}

func NewForest(p Params) *Forest {
	f := &Forest{trees: p.Trees, features: p.Features}
	if f.trees <= 0 {
		f.trees = 100
	}
	return f
}

func (f *Forest) Fit(x mat.Matrix, y []int) error {
	n, p, err := checkXY(x, y)
	if err != nil {
		return err
	}
	k := f.features
	if k <= 0 {
		k = int(math.Max(1, math.Floor(math.Sqrt(float64(p)))))
	}
	if k > p {
		return fmt.Errorf("model: %d features per tree but only %d columns", k, p)
	}

	grid, err := newGrid(p)
	if err != nil {
		return err
	}
	if err := fill(grid, x, y, n); err != nil {
		return err
	}

	bag := &meta.BaggedModel{RandomFeatures: k}
	for i := 0; i < f.trees; i++ {
		bag.AddModel(trees.NewID3DecisionTree(0))
	}
	bag.Fit(grid)

	f.bag, f.shape, f.width = bag, base.NewStructuralCopy(grid), p
	return nil
}

func (f *Forest) Predict(x mat.Matrix) ([]int, error) {
	if f.bag == nil {
		return nil, ErrNotFitted
	}
	n, c := x.Dims()
	if c != f.width {
		return nil, fmt.Errorf("model: fitted on %d features, got %d", f.width, c)
	}
	grid := base.NewStructuralCopy(f.shape)
	if err := fill(grid, x, nil, n); err != nil {
		return nil, err
	}
	out, err := f.bag.Predict(grid)
	if err != nil {
		return nil, fmt.Errorf("model: forest predict: %w", err)
	}
	labels := make([]int, n)
	for i := range labels {
		v, err := strconv.Atoi(base.GetClass(out, i))
		if err != nil {
			return nil, fmt.Errorf("model: forest class %q at row %d: %w", base.GetClass(out, i), i, err)
		}
		labels[i] = v
	}
	return labels, nil
}

func (f *Forest) Score(x mat.Matrix, y []int) (float64, error) {
	return accuracy(f, x, y)
}

// newGrid declares p float features f0..f{p-1} and a categorical class
// whose values are "0" and "1".
func newGrid(p int) (*base.DenseInstances, error) {
	grid := base.NewDenseInstances()
	for j := 0; j < p; j++ {
		grid.AddAttribute(base.NewFloatAttribute("f" + strconv.Itoa(j)))
	}
	class := base.NewCategoricalAttribute()
	class.SetName("survived")
	class.GetSysValFromString("0")
	class.GetSysValFromString("1")
	grid.AddAttribute(class)
	if err := grid.AddClassAttribute(class); err != nil {
		return nil, fmt.Errorf("model: class attribute: %w", err)
	}
	return grid, nil
}

// fill sizes grid to n rows and copies x into it; y may be nil when the
// class is to be predicted.
func fill(grid *base.DenseInstances, x mat.Matrix, y []int, n int) error {
	if err := grid.Extend(n); err != nil {
		return fmt.Errorf("model: grid: %w", err)
	}
	// attribute groups don't keep declaration order; index features by name
	_, p := x.Dims()
	features := make([]base.AttributeSpec, p)
	var classSpec base.AttributeSpec
	var class *base.CategoricalAttribute
	for _, a := range grid.AllAttributes() {
		spec, err := grid.GetAttribute(a)
		if err != nil {
			return fmt.Errorf("model: grid: %w", err)
		}
		if ca, ok := a.(*base.CategoricalAttribute); ok {
			classSpec, class = spec, ca
			continue
		}
		j, err := strconv.Atoi(strings.TrimPrefix(a.GetName(), "f"))
		if err != nil || j < 0 || j >= p {
			return fmt.Errorf("model: unexpected attribute %q", a.GetName())
		}
		features[j] = spec
	}
	if class == nil {
		return fmt.Errorf("model: grid has no class attribute")
	}
	for i := 0; i < n; i++ {
		for j, spec := range features {
			grid.Set(spec, i, base.PackFloatToBytes(x.At(i, j)))
		}
		label := "0"
		if y != nil {
			label = strconv.Itoa(y[i])
		}
		grid.Set(classSpec, i, class.GetSysValFromString(label))
	}
	return nil
}
