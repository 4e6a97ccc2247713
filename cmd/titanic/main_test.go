package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"titanic/internal/logging"
)

const trainCSV = `PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked
1,0,3,"Braund, Mr. Owen Harris",male,22,1,0,A/5 21171,7.25,,S
2,1,1,"Cumings, Mrs. John Bradley",female,38,1,0,PC 17599,71.2833,C85,C
3,1,3,"Heikkinen, Miss. Laina",female,26,0,0,STON/O2. 3101282,7.925,,S
4,1,1,"Futrelle, Mrs. Jacques Heath",female,35,1,0,113803,53.1,C123,S
5,0,3,"Allen, Mr. William Henry",male,35,0,0,373450,8.05,,S
`

const testCSV = `PassengerId,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked
892,3,"Kelly, Mr. James",male,34.5,0,0,330911,7.8292,,Q
893,3,"Wilkes, Mrs. James",female,47,1,0,363272,7,,S
`

type workspace struct {
	dir, train, test, out, config string
}

func setup(t *testing.T) workspace {
	t.Helper()
	logging.Set(zap.NewNop())
	dir := t.TempDir()
	ws := workspace{
		dir:    dir,
		train:  filepath.Join(dir, "train.csv"),
		test:   filepath.Join(dir, "test.csv"),
		out:    filepath.Join(dir, "submissions"),
		config: filepath.Join(dir, "titanic.yml"),
	}
	require.NoError(t, os.WriteFile(ws.train, []byte(trainCSV), 0o644))
	require.NoError(t, os.WriteFile(ws.test, []byte(testCSV), 0o644))
	return ws
}

func (ws workspace) args(extra ...string) []string {
	return append([]string{
		"--config", ws.config,
		"--train", ws.train,
		"--test", ws.test,
		"--out-dir", ws.out,
	}, extra...)
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Default(t *testing.T) {
	ws := setup(t)
	code, out, errOut := run(ws.args()...)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Random Forest Classifier")
	assert.Contains(t, out, "Training accuracy: ")

	got, err := os.ReadFile(filepath.Join(ws.out, "rf.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(got)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "PassengerId,Survived", lines[0])
}

func TestRun_SubcommandAndSuffix(t *testing.T) {
	ws := setup(t)
	for i := 0; i < 2; i++ {
		code, _, errOut := run(append([]string{"run"}, ws.args("-p", "svm")...)...)
		require.Equal(t, exitOK, code, errOut)
	}
	assert.FileExists(t, filepath.Join(ws.out, "svm.csv"))
	assert.FileExists(t, filepath.Join(ws.out, "svm_1.csv"))
}

func TestRun_UnknownPredictorExitsWithUsage(t *testing.T) {
	ws := setup(t)
	code, out, errOut := run(ws.args("-p", "knn")...)
	assert.Equal(t, exitUsage, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, `unknown predictor "knn"`)
	assert.Contains(t, errOut, "Support Vector Machine")
	assert.NoDirExists(t, ws.out)
}

func TestRun_BadFlagExitsWithUsage(t *testing.T) {
	code, _, _ := run("--no-such-flag")
	assert.Equal(t, exitUsage, code)
}

func TestRun_NonCSVInputFails(t *testing.T) {
	ws := setup(t)
	code, _, errOut := run(ws.args("--test", filepath.Join(ws.dir, "test.txt"))...)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, errOut, ".csv")
	assert.NoDirExists(t, ws.out)
}

func TestConfig_FlagsOverrideFile(t *testing.T) {
	ws := setup(t)
	require.NoError(t, os.WriteFile(ws.config, []byte("schema_version: v1\npredictor: svm\nseed: 3\n"), 0o644))

	code, out, errOut := run("config", "--config", ws.config, "--seed", "9")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "predictor: svm")
	assert.Contains(t, out, "seed: 9")
}

func TestHistory_ListsRecordedRuns(t *testing.T) {
	ws := setup(t)
	t.Setenv("TITANIC__LEDGER", filepath.Join(ws.dir, "runs.db"))

	code, _, errOut := run(ws.args()...)
	require.Equal(t, exitOK, code, errOut)
	code, _, errOut = run(ws.args("-p", "svm")...)
	require.Equal(t, exitOK, code, errOut)

	code, out, errOut := run("history", "--config", ws.config)
	require.Equal(t, exitOK, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	assert.Contains(t, lines[1], "svm")
	assert.Contains(t, lines[2], "rf")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0f8fad5b", shortID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.Equal(t, "run7", shortID("run7"))
	assert.Equal(t, "", shortID(""))
}
