package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/primcall/internal/binding"
	"github.com/specialistvlad/primcall/internal/dispatch"
	"github.com/specialistvlad/primcall/internal/engine"
	"github.com/specialistvlad/primcall/internal/registry"
	"github.com/specialistvlad/primcall/internal/sink"
	"github.com/specialistvlad/primcall/internal/testutil"
	"github.com/specialistvlad/primcall/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func numbers(fs ...float64) cty.Value {
	if len(fs) == 0 {
		return cty.ListValEmpty(cty.Number)
	}
	vals := make([]cty.Value, len(fs))
	for i, f := range fs {
		vals[i] = cty.NumberFloatVal(f)
	}
	return cty.ListVal(vals)
}

var single = []binding.Binding{{Field: 0, Slot: 0}}

func TestEval_Reductions(t *testing.T) {
	d, _ := testutil.NewDispatcher(t)
	input := []cty.Value{numbers(1, 2, 3)}

	testCases := []struct {
		function string
		expected float64
	}{
		{function: "numpy.sum", expected: 6},
		{function: "numpy.mean", expected: 2},
		{function: "numpy.average", expected: 2},
		{function: "numpy.amin", expected: 1},
		{function: "numpy.amax", expected: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.function, func(t *testing.T) {
			errs := sink.New()
			id := testutil.MustLookup(t, d.Registry(), tc.function)

			rows, err := d.Eval(context.Background(), id, single, input, "q.hcl:1,1-2", errs)

			require.NoError(t, err)
			require.Equal(t, []value.Row{{value.Float(tc.expected)}}, rows)
			require.Zero(t, errs.Len())
		})
	}
}

func TestEval_AliasUsesTarget(t *testing.T) {
	d, eng := testutil.NewDispatcher(t)
	errs := sink.New()

	rows, err := d.Eval(context.Background(), testutil.MustLookup(t, d.Registry(), "pystd"), single,
		[]cty.Value{numbers(2, 4, 4, 4, 5, 5, 7, 9)}, "src", errs)

	require.NoError(t, err)
	require.Equal(t, []value.Row{{value.Float(2)}}, rows)
	require.Zero(t, errs.Len())
	calls := eng.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "numpy", calls[0].Module)
	assert.Equal(t, "std", calls[0].Symbol)
}

func TestEval_EmptyInputReturnsIdentityWithoutEngine(t *testing.T) {
	custom := registry.Descriptor{
		Name:         "numpy.nanmin",
		VectorInputs: []string{"A"},
		Outputs:      []string{"result"},
		Identity:     -7,
	}
	d, eng := testutil.NewDispatcher(t, custom)

	testCases := []struct {
		function string
		input    cty.Value
		expected float64
	}{
		{function: "numpy.sum", input: numbers(), expected: 0},
		{function: "numpy.std", input: cty.EmptyTupleVal, expected: 0},
		{function: "numpy.amin", input: numbers(), expected: 0},
		{function: "numpy.prod", input: cty.EmptyTupleVal, expected: 1},
		{function: "numpy.prod", input: numbers(), expected: 1},
		{function: "numpy.nanmin", input: numbers(), expected: -7},
	}

	for _, tc := range testCases {
		t.Run(tc.function, func(t *testing.T) {
			errs := sink.New()
			rows, err := d.Eval(context.Background(), testutil.MustLookup(t, d.Registry(), tc.function), single,
				[]cty.Value{tc.input}, "src", errs)

			require.NoError(t, err)
			require.Equal(t, []value.Row{{value.Float(tc.expected)}}, rows)
			require.Zero(t, errs.Len())
		})
	}

	require.Empty(t, eng.Calls(), "the engine must not be invoked for empty input")
}

func TestEval_NonNumericArgumentRecordsTypeError(t *testing.T) {
	d, eng := testutil.NewDispatcher(t)
	id := testutil.MustLookup(t, d.Registry(), "numpy.sum")
	source := "queries/main.hcl:12,3-40"

	for _, arg := range []cty.Value{
		cty.StringVal("1, 2, 3"),
		cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("2")}),
		cty.NullVal(cty.List(cty.Number)),
	} {
		t.Run(arg.GoString(), func(t *testing.T) {
			errs := sink.New()

			rows, err := d.Eval(context.Background(), id, single, []cty.Value{arg}, source, errs)

			require.NoError(t, err)
			require.Empty(t, rows)
			require.Equal(t, 1, errs.Len())
			row := errs.Rows()[0]
			require.Equal(t, source, sink.Source(row))
			require.Equal(t,
				`Type error while calling: Function{id: 0, name: "numpy.sum"} `+value.Repr([]cty.Value{arg}),
				sink.Message(row))
		})
	}

	require.Empty(t, eng.Calls())
}

func TestEval_ArityMismatchIsTypeError(t *testing.T) {
	d, _ := testutil.NewDispatcher(t)
	id := testutil.MustLookup(t, d.Registry(), "numpy.sum")

	for name, bindings := range map[string][]binding.Binding{
		"no arguments":  nil,
		"two arguments": {{Field: 0, Slot: 0}, {Field: 1, Slot: 0}},
	} {
		t.Run(name, func(t *testing.T) {
			errs := sink.New()
			rows, err := d.Eval(context.Background(), id, bindings, []cty.Value{numbers(1)}, "src", errs)
			require.NoError(t, err)
			require.Empty(t, rows)
			require.Equal(t, 1, errs.Len())
		})
	}
}

func TestEval_EngineFailureIsTypeError(t *testing.T) {
	broken := registry.Descriptor{Name: "scipy.stats.kurtosis", VectorInputs: []string{"A"}, Outputs: []string{"result"}}
	d, eng := testutil.NewDispatcher(t, broken)
	errs := sink.New()

	rows, err := d.Eval(context.Background(), testutil.MustLookup(t, d.Registry(), "scipy.stats.kurtosis"), single,
		[]cty.Value{numbers(1, 2)}, "src", errs)

	require.NoError(t, err)
	require.Empty(t, rows)
	require.Equal(t, 1, errs.Len())
	require.Contains(t, sink.Message(errs.Rows()[0]), "Type error while calling:")
	require.Len(t, eng.Calls(), 1)
}

func TestEval_NonCanonicalBindingsAreFatal(t *testing.T) {
	d, eng := testutil.NewDispatcher(t)
	id := testutil.MustLookup(t, d.Registry(), "numpy.sum")
	errs := sink.New()

	rows, err := d.Eval(context.Background(), id, []binding.Binding{{Field: 1, Slot: 0}}, []cty.Value{numbers(1)}, "src", errs)

	require.Error(t, err)
	require.True(t, errors.Is(err, binding.ErrInvariantViolation))
	var typeErr *dispatch.TypeError
	require.False(t, errors.As(err, &typeErr))
	require.Nil(t, rows)
	require.Zero(t, errs.Len(), "a fatal defect is not a diagnostic row")
	require.Empty(t, eng.Calls())
}

func TestCallSite_SlotOutOfRangeIsFatal(t *testing.T) {
	d, _ := testutil.NewDispatcher(t)
	cs, err := d.Compile(testutil.MustLookup(t, d.Registry(), "numpy.sum"), []binding.Binding{{Field: 0, Slot: 4}})
	require.NoError(t, err)

	errs := sink.New()
	_, err = cs.Eval(context.Background(), []cty.Value{numbers(1)}, "src", errs)
	require.True(t, errors.Is(err, binding.ErrInvariantViolation))
	require.Zero(t, errs.Len())
}

func TestCompile_RejectsMultiOutputFunctions(t *testing.T) {
	pair := registry.Descriptor{Name: "numpy.minmax", VectorInputs: []string{"A"}, Outputs: []string{"max", "min"}}
	d, _ := testutil.NewDispatcher(t, pair)

	_, err := d.Compile(testutil.MustLookup(t, d.Registry(), "numpy.minmax"), single)
	require.True(t, errors.Is(err, dispatch.ErrUnsupportedSignature))
}

func TestCallSite_CallDistinguishesCauses(t *testing.T) {
	broken := registry.Descriptor{Name: "scipy.sum", VectorInputs: []string{"A"}, Outputs: []string{"result"}}
	d, _ := testutil.NewDispatcher(t, broken)

	sum, err := d.Compile(testutil.MustLookup(t, d.Registry(), "numpy.sum"), single)
	require.NoError(t, err)
	missing, err := d.Compile(testutil.MustLookup(t, d.Registry(), "scipy.sum"), single)
	require.NoError(t, err)

	t.Run("argument shape", func(t *testing.T) {
		_, err := sum.Call(context.Background(), []cty.Value{cty.StringVal("x")})
		var typeErr *dispatch.TypeError
		require.True(t, errors.As(err, &typeErr))
		require.True(t, errors.Is(err, dispatch.ErrArgumentShape))
		var evalErr *engine.EvaluationError
		require.False(t, errors.As(err, &evalErr))
	})

	t.Run("external failure", func(t *testing.T) {
		_, err := missing.Call(context.Background(), []cty.Value{numbers(1)})
		var typeErr *dispatch.TypeError
		require.True(t, errors.As(err, &typeErr))
		require.False(t, errors.Is(err, dispatch.ErrArgumentShape))
		var evalErr *engine.EvaluationError
		require.True(t, errors.As(err, &evalErr))
		require.True(t, errors.Is(err, engine.ErrModuleNotFound))
	})
}

func TestEval_SharedSinkKeepsCallOrder(t *testing.T) {
	// --- Arrange ---
	d, _ := testutil.NewDispatcher(t)
	id := testutil.MustLookup(t, d.Registry(), "numpy.sum")
	errs := sink.New()

	// --- Act ---
	failed, err := d.Eval(context.Background(), id, single, []cty.Value{cty.StringVal("bad")}, "first", errs)
	require.NoError(t, err)
	succeeded, err := d.Eval(context.Background(), id, single, []cty.Value{numbers(1, 2, 3)}, "second", errs)
	require.NoError(t, err)

	// --- Assert ---
	require.Empty(t, failed)
	require.Equal(t, []value.Row{{value.Float(6)}}, succeeded)
	require.Equal(t, 1, errs.Len())
	require.Equal(t, "first", sink.Source(errs.Rows()[0]))
}

func TestFunction_String(t *testing.T) {
	f := dispatch.Function{ID: 3, Name: "numpy.std"}
	require.Equal(t, `Function{id: 3, name: "numpy.std"}`, f.String())
}
