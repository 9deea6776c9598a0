package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/primcall/internal/binding"
	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/engine"
	"github.com/specialistvlad/primcall/internal/registry"
	"github.com/specialistvlad/primcall/internal/sink"
	"github.com/specialistvlad/primcall/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Dispatcher evaluates calls against one registry and one engine host.
type Dispatcher struct {
	reg  *registry.Registry
	host *engine.Host
}

// New returns a dispatcher. Both dependencies are shared, read-only for the
// registry and lock-guarded for the host.
func New(reg *registry.Registry, host *engine.Host) *Dispatcher {
	return &Dispatcher{reg: reg, host: host}
}

// Registry returns the registry the dispatcher resolves functions in.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.reg
}

// CallSite is a compiled call: a function plus bindings already checked
// against the canonical argument order.
type CallSite struct {
	host     *engine.Host
	fn       Function
	desc     *registry.Descriptor
	bindings []binding.Binding
}

// Compile checks bindings for id and returns a reusable call site. Errors
// are fatal for the call site being built.
func (d *Dispatcher) Compile(id registry.ID, bindings []binding.Binding) (*CallSite, error) {
	desc := d.reg.Resolve(id)
	if len(desc.Outputs) != 1 {
		return nil, fmt.Errorf("function '%s' declares %d outputs, only single-output functions can be dispatched: %w",
			desc.Name, len(desc.Outputs), ErrUnsupportedSignature)
	}
	if err := binding.Validate(bindings); err != nil {
		return nil, fmt.Errorf("compiling call to '%s': %w", desc.Name, err)
	}
	return &CallSite{
		host:     d.host,
		fn:       Function{ID: id, Name: desc.Name},
		desc:     desc,
		bindings: append([]binding.Binding(nil), bindings...),
	}, nil
}

// Eval compiles and evaluates a single call. The returned error is only ever
// a fatal binding defect; type errors are recorded in errs.
func (d *Dispatcher) Eval(ctx context.Context, id registry.ID, bindings []binding.Binding, inputs []cty.Value, source string, errs *sink.Sink) ([]value.Row, error) {
	cs, err := d.Compile(id, bindings)
	if err != nil {
		return nil, err
	}
	return cs.Eval(ctx, inputs, source, errs)
}

// Function identifies the callee.
func (c *CallSite) Function() Function {
	return c.fn
}

// Descriptor returns the callee's descriptor.
func (c *CallSite) Descriptor() *registry.Descriptor {
	return c.desc
}

// Bindings returns a copy of the call site's bindings.
func (c *CallSite) Bindings() []binding.Binding {
	return append([]binding.Binding(nil), c.bindings...)
}

// Eval runs the call over inputs. On success it returns the output rows and
// leaves errs untouched; on a type error it appends exactly one row to errs
// and returns no rows. A non-nil error means the bindings point outside
// inputs, which is a caller defect.
func (c *CallSite) Eval(ctx context.Context, inputs []cty.Value, source string, errs *sink.Sink) ([]value.Row, error) {
	args, err := binding.Gather(c.bindings, inputs)
	if err != nil {
		return nil, fmt.Errorf("evaluating call to '%s': %w", c.desc.Name, err)
	}

	rows, err := c.Call(ctx, args)
	if err != nil {
		var typeErr *TypeError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Call recorded a type error.",
			"function", c.fn.Name,
			"source", source,
			"cause", typeErr.Cause,
		)
		errs.Append(source, typeErr.Error())
		return []value.Row{}, nil
	}
	return rows, nil
}

// Call runs the function over arguments already in declared order. Every
// failure is a *TypeError; Eval is the variant that folds it into a sink.
func (c *CallSite) Call(ctx context.Context, args []cty.Value) ([]value.Row, error) {
	// Only single vector-argument reductions are dispatched for now.
	if len(args) != 1 {
		return nil, c.typeError(args, fmt.Errorf("%w: expected 1 argument, got %d", ErrArgumentShape, len(args)))
	}

	seq, ok := value.AsNumericSequence(args[0])
	if !ok {
		return nil, c.typeError(args, fmt.Errorf("%w: not a numeric sequence", ErrArgumentShape))
	}

	if len(seq) == 0 {
		return []value.Row{{value.Float(c.desc.Identity)}}, nil
	}

	result, err := c.host.Call(ctx, c.desc.Address(), seq)
	if err != nil {
		return nil, c.typeError(args, err)
	}
	return []value.Row{{value.Float(result)}}, nil
}

func (c *CallSite) typeError(args []cty.Value, cause error) *TypeError {
	return &TypeError{Function: c.fn, Args: args, Cause: cause}
}
