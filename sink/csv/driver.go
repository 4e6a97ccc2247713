// titanic/sink/csv/driver.go
package csv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"titanic/sink"
)

/* ────────── public config ────────── */
type Config struct {
	Dir  string // created if missing
	Name string // base file name without extension, e.g. "rf"
}

/* ────────── driver ────────── */
type driver struct {
	f      *os.File
	path   string
	ids    []string
	labels []int
	closed bool
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("csv-sink: expected Config, got %T", raw)
	}
	if c.Name == "" {
		return errors.New("csv-sink: empty file name")
	}
	f, path, err := Create(c.Dir, c.Name)
	if err != nil {
		return err
	}
	d.f, d.path = f, path
	return nil
}

func (d *driver) Push(p sink.Prediction) error {
	if d.f == nil || d.closed {
		return errors.New("csv-sink: not open")
	}
	d.ids = append(d.ids, p.PassengerID)
	d.labels = append(d.labels, p.Survived)
	return nil
}

func (d *driver) Close() error {
	if d.f == nil || d.closed {
		return nil
	}
	d.closed = true
	df := dataframe.New(
		series.New(d.ids, series.String, "PassengerId"),
		series.New(d.labels, series.Int, "Survived"),
	)
	werr := df.WriteCSV(d.f)
	if cerr := d.f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("csv-sink %s: %w", d.path, werr)
	}
	return nil
}

/* ────────── sink.Aborter ────────── */
// Abort drops buffered rows and removes the file created by Configure.
func (d *driver) Abort() error {
	if d.f == nil || d.closed {
		return nil
	}
	d.closed = true
	d.ids, d.labels = nil, nil
	cerr := d.f.Close()
	if err := os.Remove(d.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("csv-sink %s: %w", d.path, err)
	}
	return cerr
}

/* ────────── sink.Located ────────── */
func (d *driver) Path() string { return d.path }

// Create makes dir if needed and exclusively creates the first free name
// among name.csv, name_1.csv, name_2.csv, …
func Create(dir, name string) (*os.File, string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("csv-sink: %w", err)
	}
	for n := 0; ; n++ {
		base := name
		if n > 0 {
			base = name + "_" + strconv.Itoa(n)
		}
		path := filepath.Join(dir, base+".csv")
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("csv-sink: %w", err)
		}
		return f, path, nil
	}
}

/* ────────── auto-register ────────── */
func init() {
	sink.Register("csv", func() sink.Adapter { return &driver{} })
}
