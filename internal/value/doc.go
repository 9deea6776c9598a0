// Package value binds the invocation layer to the go-cty value model.
//
// A Value is a cty.Value: its cty.Type is the runtime tag, Text is a
// cty.String and FloatingPoint is a cty.Number. The package exposes the row
// shapes that flow back into relational evaluation and AsNumericSequence,
// the single gate through which an opaque value becomes numeric input for an
// external routine.
package value
