// titanic/sink/stdout/driver.go
package stdout

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"titanic/sink"
)

/* ────────── public config ────────── */
type Config struct {
	PrintCounter bool      // prepend seq#
	Out          io.Writer // nil = os.Stdout
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config
	w   *bufio.Writer
	seq uint64
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	d.w = bufio.NewWriter(c.Out)
	return nil
}

func (d *driver) Push(p sink.Prediction) error {
	if d.w == nil {
		return fmt.Errorf("stdout-sink: not configured")
	}
	d.seq++
	if d.cfg.PrintCounter {
		_, err := fmt.Fprintf(d.w, "[sink %06d] %s -> %d\n", d.seq, p.PassengerID, p.Survived)
		return err
	}
	_, err := fmt.Fprintf(d.w, "[sink] %s -> %d\n", p.PassengerID, p.Survived)
	return err
}

func (d *driver) Close() error {
	if d.w == nil {
		return nil
	}
	return d.w.Flush()
}

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
