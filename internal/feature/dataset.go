package feature

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
)

// Dataset is a transformed frame together with the mode it was built in.
type Dataset struct {
	Frame      dataframe.DataFrame
	Evaluation bool
}

func (d Dataset) Len() int { return d.Frame.Nrow() }

// FeaturesAndLabel splits off the label in training mode. In evaluation
// mode the whole frame is returned, identifier included, and label is nil.
func (d Dataset) FeaturesAndLabel() (dataframe.DataFrame, []int, error) {
	if d.Evaluation {
		return d.Frame, nil, nil
	}
	if err := requireColumns(d.Frame, Survived); err != nil {
		return dataframe.DataFrame{}, nil, err
	}
	raw := d.Frame.Col(Survived).Float()
	label := make([]int, len(raw))
	for i, v := range raw {
		switch v {
		case 0, 1:
			label[i] = int(v)
		default:
			return dataframe.DataFrame{}, nil, fmt.Errorf("feature: %s row %d: want 0 or 1, got %v", Survived, i, v)
		}
	}
	features := d.Frame.Drop(Survived)
	if features.Err != nil {
		return dataframe.DataFrame{}, nil, features.Err
	}
	return features, label, nil
}

// Identifiers returns the PassengerId column as text, in row order.
func (d Dataset) Identifiers() ([]string, error) {
	if err := requireColumns(d.Frame, PassengerID); err != nil {
		return nil, err
	}
	return d.Frame.Col(PassengerID).Records(), nil
}

// Matrix copies every column of df except exclude into a rows×cols
// matrix and returns the column order used.
func Matrix(df dataframe.DataFrame, exclude ...string) (*mat.Dense, []string, error) {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	var cols []string
	for _, n := range df.Names() {
		if !skip[n] {
			cols = append(cols, n)
		}
	}
	rows := df.Nrow()
	if rows == 0 || len(cols) == 0 {
		return nil, cols, fmt.Errorf("feature: empty feature matrix (%d rows, %d columns)", rows, len(cols))
	}
	m := mat.NewDense(rows, len(cols), nil)
	for j, c := range cols {
		for i, v := range df.Col(c).Float() {
			if math.IsNaN(v) {
				return nil, cols, fmt.Errorf("feature: column %q row %d is not numeric", c, i)
			}
			m.Set(i, j, v)
		}
	}
	return m, cols, nil
}
