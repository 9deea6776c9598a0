package dispatch

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/primcall/internal/registry"
	"github.com/specialistvlad/primcall/internal/value"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrArgumentShape means the arguments could not be coerced into the
	// shape the routine accepts.
	ErrArgumentShape = errors.New("argument does not have the expected shape")
	// ErrUnsupportedSignature means a descriptor cannot be dispatched by
	// this layer.
	ErrUnsupportedSignature = errors.New("unsupported function signature")
)

// Function identifies the callee in diagnostics.
type Function struct {
	ID   registry.ID
	Name string
}

func (f Function) String() string {
	return fmt.Sprintf("Function{id: %d, name: %q}", f.ID, f.Name)
}

// TypeError is the recoverable failure of a single call. Cause is either
// wrapped ErrArgumentShape or an *engine.EvaluationError.
type TypeError struct {
	Function Function
	Args     []cty.Value
	Cause    error
}

// Error is the message recorded in the sink.
func (e *TypeError) Error() string {
	return fmt.Sprintf("Type error while calling: %v %s", e.Function, value.Repr(e.Args))
}

func (e *TypeError) Unwrap() error {
	return e.Cause
}
