package feature

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

// Raw and derived column names.
const (
	PassengerID = "PassengerId"
	Survived    = "Survived"
	Name        = "Name"
	Sex         = "Sex"
	Age         = "Age"
	SibSp       = "SibSp"
	Parch       = "Parch"
	Fare        = "Fare"
	Embarked    = "Embarked"
	Ticket      = "Ticket"
	Cabin       = "Cabin"
	Pclass      = "Pclass"

	Title  = "Title"
	Family = "Family"
)

var (
	// ErrAlreadyTransformed is returned when a frame already carries derived columns.
	ErrAlreadyTransformed = errors.New("feature: frame is already transformed")
	// ErrNoObservedValues is returned when a categorical column has no value to take the mode of.
	ErrNoObservedValues = errors.New("feature: column has no observed values")
)

// SchemaError names a required column that is missing from the frame.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("feature: required column %q is missing", e.Column)
}

// CategoryError reports a categorical value outside the known mapping.
type CategoryError struct {
	Column string
	Value  string
	Row    int
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("feature: column %q row %d: unrecognised category %q", e.Column, e.Row, e.Value)
}

func has(df dataframe.DataFrame, col string) bool {
	for _, n := range df.Names() {
		if n == col {
			return true
		}
	}
	return false
}

func requireColumns(df dataframe.DataFrame, cols ...string) error {
	for _, c := range cols {
		if !has(df, c) {
			return &SchemaError{Column: c}
		}
	}
	return nil
}

// dropPresent drops whichever of cols exist; absent ones are skipped.
func dropPresent(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	var present []string
	for _, c := range cols {
		if has(df, c) {
			present = append(present, c)
		}
	}
	if len(present) == 0 {
		return df, nil
	}
	out := df.Drop(present)
	return out, out.Err
}
