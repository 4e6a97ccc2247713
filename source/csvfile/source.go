// Package csvfile loads passenger tables from comma-separated files with a
// header row. Empty cells, NA and NaN are read as missing values.
package csvfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// ErrNotCSV is returned for any path without a .csv extension, before it is opened.
var ErrNotCSV = errors.New("csvfile: input path must end in .csv")

var nanValues = []string{"", "NA", "NaN", "<nil>"}

// CheckPath enforces the .csv precondition without touching the filesystem.
func CheckPath(path string) error {
	if !strings.HasSuffix(path, ".csv") {
		return fmt.Errorf("%w: %q", ErrNotCSV, path)
	}
	return nil
}

func Load(path string) (dataframe.DataFrame, error) {
	if err := CheckPath(path); err != nil {
		return dataframe.DataFrame{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("csvfile: %w", err)
	}
	defer f.Close()
	df, err := Read(f)
	if err != nil {
		return df, fmt.Errorf("csvfile %s: %w", path, err)
	}
	return df, nil
}

func Read(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.NaNValues(nanValues))
	if df.Err != nil {
		return df, df.Err
	}
	return df, nil
}
