// Package binding maps a call site's declared argument positions onto the
// runtime slots that hold their values.
package binding

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ErrInvariantViolation is matched by every error this package returns. It
// signals a defect in the code that compiled the call site, not bad data.
var ErrInvariantViolation = errors.New("binding invariant violated")

// Binding pairs a declared field index with the variable slot holding its value.
type Binding struct {
	Field int
	Slot  int
}

// InvariantViolationError describes which binding broke the canonical order
// or pointed outside the available inputs.
type InvariantViolationError struct {
	Position int
	Binding  Binding
	Reason   string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("binding %d (field %d, slot %d): %s", e.Position, e.Binding.Field, e.Binding.Slot, e.Reason)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}

// Validate checks that the declared field indices are exactly 0..n-1 in the
// given order. Callers sort arguments into canonical order before they get here.
func Validate(bindings []Binding) error {
	for i, b := range bindings {
		if b.Field != i {
			return &InvariantViolationError{
				Position: i,
				Binding:  b,
				Reason:   fmt.Sprintf("declared field index must be %d", i),
			}
		}
		if b.Slot < 0 {
			return &InvariantViolationError{Position: i, Binding: b, Reason: "slot index is negative"}
		}
	}
	return nil
}

// Resolve returns the input values aligned to declared parameter order.
func Resolve(bindings []Binding, inputs []cty.Value) ([]cty.Value, error) {
	if err := Validate(bindings); err != nil {
		return nil, err
	}
	return Gather(bindings, inputs)
}

// Gather picks the inputs for bindings that were already validated.
func Gather(bindings []Binding, inputs []cty.Value) ([]cty.Value, error) {
	values := make([]cty.Value, len(bindings))
	for i, b := range bindings {
		if b.Slot >= len(inputs) {
			return nil, &InvariantViolationError{
				Position: i,
				Binding:  b,
				Reason:   fmt.Sprintf("slot index out of range for %d inputs", len(inputs)),
			}
		}
		values[i] = inputs[b.Slot]
	}
	return values, nil
}
