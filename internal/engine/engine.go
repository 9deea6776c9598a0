package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModuleNotFound means the engine has no module with the requested name.
	ErrModuleNotFound = errors.New("module not found")
	// ErrSymbolNotFound means the module exists but does not export the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNonFiniteResult means the routine produced NaN or an infinity.
	ErrNonFiniteResult = errors.New("result is not a finite number")
)

// Engine runs numeric routines addressed by module and symbol.
type Engine interface {
	Call(ctx context.Context, module, symbol string, args []float64) (float64, error)
}

// EvaluationError wraps any failure reported while addressing or running an
// external routine.
type EvaluationError struct {
	Module string
	Symbol string
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of %s failed: %v", joinName(e.Module, e.Symbol), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// SplitName splits a "module.symbol" address on its last separator. A bare
// name has an empty module.
func SplitName(name string) (module, symbol string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}

func joinName(module, symbol string) string {
	if module == "" {
		return symbol
	}
	return module + "." + symbol
}
