package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesAndLabel_Training(t *testing.T) {
	df := frame(t, header+
		`1,0,3,"Braund, Mr. Owen",male,22,1,0,A/5,7.25,,S
2,1,1,"Cumings, Mrs. John",female,38,1,0,PC,71.28,C85,C
`)
	ds, err := NewTransformer().Transform(df, false)
	require.NoError(t, err)

	x, y, err := ds.FeaturesAndLabel()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, y)
	assert.NotContains(t, x.Names(), Survived)
	assert.Equal(t, 2, x.Nrow())

	m, cols, err := Matrix(x)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, len(cols), c)
	assert.Equal(t, []string{Pclass, Sex, Age, Fare, Embarked, Title, Family}, cols)
	assert.Equal(t, []float64{1, 1, 2, 3, 1, 2, 1}, m.RawRowView(1))
}

func TestFeaturesAndLabel_TrainingWithoutLabel(t *testing.T) {
	df := frame(t, "PassengerId,Pclass,Age,Fare,Embarked\n1,3,22,7.25,S\n")
	ds, err := NewTransformer().Transform(df, false)
	require.NoError(t, err)
	_, _, err = ds.FeaturesAndLabel()
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Survived, se.Column)
}

func TestFeaturesAndLabel_RejectsNonBinaryLabel(t *testing.T) {
	df := frame(t, "PassengerId,Survived,Pclass,Age,Fare,Embarked\n1,2,3,22,7.25,S\n")
	ds, err := NewTransformer().Transform(df, false)
	require.NoError(t, err)
	_, _, err = ds.FeaturesAndLabel()
	assert.Error(t, err)
}

func TestFeaturesAndLabel_Evaluation(t *testing.T) {
	df := frame(t, "PassengerId,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked\n"+
		`892,3,"Kelly, Mr. James",male,34.5,0,0,330911,7.8292,,Q
893,3,"Wilkes, Mrs. James",female,47,1,0,363272,7,,S
`)
	ds, err := NewTransformer().Transform(df, true)
	require.NoError(t, err)

	x, y, err := ds.FeaturesAndLabel()
	require.NoError(t, err)
	assert.Nil(t, y)
	assert.Contains(t, x.Names(), PassengerID)

	ids, err := ds.Identifiers()
	require.NoError(t, err)
	assert.Equal(t, []string{"892", "893"}, ids)

	m, cols, err := Matrix(x, PassengerID)
	require.NoError(t, err)
	assert.NotContains(t, cols, PassengerID)
	assert.Equal(t, []float64{3, 0, 2, 0, 2, 4, 0}, m.RawRowView(0))
}

func TestMatrix_RejectsMissingValues(t *testing.T) {
	df := frame(t, "PassengerId,Survived,Pclass,Age,Fare,Embarked\n1,0,,22,7.25,S\n2,1,1,30,8,S\n")
	ds, err := NewTransformer().Transform(df, false)
	require.NoError(t, err)
	x, _, err := ds.FeaturesAndLabel()
	require.NoError(t, err)
	_, _, err = Matrix(x)
	assert.ErrorContains(t, err, Pclass)
}
