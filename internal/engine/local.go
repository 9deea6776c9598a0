package engine

import (
	"context"
	"fmt"
	"sort"
)

// Routine is a numeric reduction exported by a local module.
type Routine func(args []float64) (float64, error)

// Local is an in-process Engine. Modules and symbols are registered before
// the engine is handed to a Host and never change afterwards.
type Local struct {
	modules map[string]map[string]Routine
}

// NewLocal returns an engine with the numpy-compatible module preloaded.
func NewLocal() *Local {
	l := &Local{modules: make(map[string]map[string]Routine)}
	for symbol, fn := range numpyRoutines() {
		l.Register(NumpyModule, symbol, fn)
	}
	return l
}

// Register exports fn as module.symbol.
func (l *Local) Register(module, symbol string, fn Routine) {
	if _, exists := l.modules[module][symbol]; exists {
		panic(fmt.Sprintf("routine '%s' already registered", joinName(module, symbol)))
	}
	if l.modules[module] == nil {
		l.modules[module] = make(map[string]Routine)
	}
	l.modules[module][symbol] = fn
}

// Symbols lists the exported symbols of module, sorted.
func (l *Local) Symbols(module string) []string {
	syms := make([]string, 0, len(l.modules[module]))
	for s := range l.modules[module] {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// Call implements Engine.
func (l *Local) Call(_ context.Context, module, symbol string, args []float64) (float64, error) {
	mod, ok := l.modules[module]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrModuleNotFound, module)
	}
	fn, ok := mod[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %q in module %q", ErrSymbolNotFound, symbol, module)
	}
	return fn(args)
}
