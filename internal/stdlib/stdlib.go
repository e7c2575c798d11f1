// Package stdlib is the fixed set of builtin functions programs may call:
// turtle control, string handling and math.
package stdlib

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"tortuga/internal/logic"
	"tortuga/internal/turtle"
	"tortuga/internal/value"
)

var (
	ErrOutOfRange = errors.New("out of range")
	errNoSpace    = errors.New("no turtle space attached")
)

const DefaultSeed = 1

type Func func(f *logic.Frame, space *turtle.Space) (value.Value, error)

type builtin struct {
	name  string
	arity int
	host  bool // needs a turtle space
	fn    Func
}

func (b *builtin) Name() string { return b.name }
func (b *builtin) Arity() int   { return b.arity }

func (b *builtin) BindHost(space *turtle.Space) error {
	if b.host && space == nil {
		return errNoSpace
	}
	return nil
}

func (b *builtin) Invoke(f *logic.Frame, space *turtle.Space) (value.Value, error) {
	return b.fn(f, space)
}

// Registry maps builtin names to functions. Lookups are read only after
// construction; the random source is the only mutable state.
type Registry struct {
	funcs map[string]*builtin

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds the registry with a random source seeded from seed, so runs with
// the same seed draw the same numbers.
func New(seed uint64) *Registry {
	r := &Registry{funcs: make(map[string]*builtin)}
	r.Seed(seed)
	registerTurtle(r)
	registerStrings(r)
	registerMath(r)
	return r
}

func Default() *Registry {
	return New(DefaultSeed)
}

func (r *Registry) Seed(seed uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (r *Registry) register(name string, arity int, host bool, fn Func) {
	if _, dup := r.funcs[name]; dup {
		panic("stdlib: duplicate builtin " + name)
	}
	r.funcs[name] = &builtin{name: name, arity: arity, host: host, fn: fn}
}

func (r *Registry) Lookup(name string) (logic.Builtin, bool) {
	b, ok := r.funcs[name]
	if !ok {
		return nil, false
	}
	return b, true
}

// Names lists every builtin, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func badArgument(f *logic.Frame, i int, want string) error {
	return fmt.Errorf("%w: %s expects %s for argument %d, got %s",
		turtle.ErrBadArgument, f.Proc.Name(), want, i+1, f.Arg(i).Inspect())
}

func number(f *logic.Frame, i int) (float64, error) {
	n, ok := f.Arg(i).AsFloat()
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, badArgument(f, i, "a finite number")
	}
	return n, nil
}

func integer(f *logic.Frame, i int) (int64, error) {
	n, ok := f.Arg(i).AsInt()
	if !ok {
		return 0, badArgument(f, i, "an integer")
	}
	return n, nil
}

func text(f *logic.Frame, i int) (string, error) {
	s, ok := f.Arg(i).Text()
	if !ok {
		return "", badArgument(f, i, "a string")
	}
	return s, nil
}
