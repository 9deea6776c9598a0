package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/primcall/internal/engine"
)

// EngineCall records one call that reached a CountingEngine.
type EngineCall struct {
	Module string
	Symbol string
	Args   []float64
}

// CountingEngine forwards to an inner engine and records every call, so
// tests can assert whether the external engine was touched at all.
type CountingEngine struct {
	Inner engine.Engine

	mu    sync.Mutex
	calls []EngineCall
}

// NewCountingEngine wraps the local numpy-compatible engine.
func NewCountingEngine() *CountingEngine {
	return &CountingEngine{Inner: engine.NewLocal()}
}

// Call implements engine.Engine.
func (c *CountingEngine) Call(ctx context.Context, module, symbol string, args []float64) (float64, error) {
	c.mu.Lock()
	c.calls = append(c.calls, EngineCall{Module: module, Symbol: symbol, Args: append([]float64(nil), args...)})
	c.mu.Unlock()
	return c.Inner.Call(ctx, module, symbol, args)
}

// Calls returns a copy of the recorded calls.
func (c *CountingEngine) Calls() []EngineCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]EngineCall(nil), c.calls...)
}
