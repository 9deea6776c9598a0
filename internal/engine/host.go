package engine

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/specialistvlad/primcall/internal/ctxlog"
)

// Host serializes every call into the wrapped Engine. Build one per process
// and share it.
type Host struct {
	mu     sync.Mutex
	engine Engine
}

// NewHost wraps e.
func NewHost(e Engine) *Host {
	if e == nil {
		panic("engine: NewHost called with a nil Engine")
	}
	return &Host{engine: e}
}

// Call resolves address into (module, symbol) and invokes the routine while
// holding the host lock. A panic inside the engine is reported like any other
// evaluation failure.
func (h *Host) Call(ctx context.Context, address string, args []float64) (result float64, err error) {
	module, symbol := SplitName(address)
	logger := ctxlog.FromContext(ctx).With("module", module, "symbol", symbol)

	h.mu.Lock()
	defer h.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = &EvaluationError{Module: module, Symbol: symbol, Err: fmt.Errorf("engine panicked: %v", r)}
		}
	}()

	logger.Debug("Calling external routine.", "arg_count", len(args))
	result, err = h.engine.Call(ctx, module, symbol, args)
	if err != nil {
		logger.Debug("External routine failed.", "error", err)
		return 0, &EvaluationError{Module: module, Symbol: symbol, Err: err}
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, &EvaluationError{Module: module, Symbol: symbol, Err: ErrNonFiniteResult}
	}
	return result, nil
}
