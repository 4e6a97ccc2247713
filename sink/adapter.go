package sink

import (
	"fmt"
	"sort"
	"strings"
)

// Prediction is one output row: the evaluation identifier and its label.
type Prediction struct {
	PassengerID string `json:"PassengerId"`
	Survived    int    `json:"Survived"`
}

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error   // driver-specific config struct
	Push(Prediction) error // consume one row, in evaluation order
	Close() error          // flushes; idempotent
}

// Aborter is optional; Abort releases the sink and discards anything it
// has written so far. Sinks without it are closed instead.
type Aborter interface {
	Abort() error
}

// Located is optional; sinks that write a file report where.
type Located interface {
	Path() string
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names lists registered sinks, sorted.
func Names() []string {
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
