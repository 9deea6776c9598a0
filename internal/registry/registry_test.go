package registry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "numpy.sum", VectorInputs: []string{"A"}, Outputs: []string{"result"}, Description: "Sum."},
		{Name: "numpy.mean", VectorInputs: []string{"A"}, Outputs: []string{"result"}, Description: "Mean."},
		{Name: "pystd", VectorInputs: []string{"A"}, Outputs: []string{"result"}, Target: "numpy.std"},
	}
}

func TestNew_LookupResolveRoundTrip(t *testing.T) {
	reg, err := New(sampleDescriptors()...)
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())

	for _, name := range reg.Names() {
		id, err := reg.Lookup(name)
		require.NoError(t, err)
		require.Equal(t, name, reg.Resolve(id).Name)
	}
}

func TestNew_AssignsDenseIDsInOrder(t *testing.T) {
	reg, err := New(sampleDescriptors()...)
	require.NoError(t, err)

	for want, name := range []string{"numpy.sum", "numpy.mean", "pystd"} {
		id, err := reg.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, ID(want), id)
	}
}

func TestLookup_UnknownFunction(t *testing.T) {
	reg, err := New(sampleDescriptors()...)
	require.NoError(t, err)

	for _, name := range []string{"numpy.median", "", "NUMPY.SUM", "numpy"} {
		_, err := reg.Lookup(name)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrUnknownFunction))

		var unknown *UnknownFunctionError
		require.True(t, errors.As(err, &unknown))
		require.Equal(t, name, unknown.Name)
	}
}

func TestResolve_PanicsOnForeignID(t *testing.T) {
	reg, err := New(sampleDescriptors()...)
	require.NoError(t, err)

	require.Panics(t, func() { reg.Resolve(ID(42)) })
}

func TestRegistry_IsImmutable(t *testing.T) {
	descs := sampleDescriptors()
	reg, err := New(descs...)
	require.NoError(t, err)

	descs[0].Outputs[0] = "mutated"
	descs[0].Name = "mutated"

	id, err := reg.Lookup("numpy.sum")
	require.NoError(t, err)
	require.Equal(t, []string{"result"}, reg.Resolve(id).Outputs)
}

func TestDescriptor_Address(t *testing.T) {
	reg, err := New(sampleDescriptors()...)
	require.NoError(t, err)

	sumID, _ := reg.Lookup("numpy.sum")
	aliasID, _ := reg.Lookup("pystd")
	assert.Equal(t, "numpy.sum", reg.Resolve(sumID).Address())
	assert.Equal(t, "numpy.std", reg.Resolve(aliasID).Address())
}

func TestDescriptor_InputsAreAlphabetical(t *testing.T) {
	d := Descriptor{ScalarInputs: []string{"ddof"}, VectorInputs: []string{"weights", "A"}}
	require.Equal(t, []string{"A", "ddof", "weights"}, d.Inputs())
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name      string
		descs     []Descriptor
		errSubstr string
	}{
		{
			name:      "empty name",
			descs:     []Descriptor{{Name: " ", Outputs: []string{"result"}}},
			errSubstr: "name must not be empty",
		},
		{
			name: "duplicate name",
			descs: []Descriptor{
				{Name: "numpy.sum", Outputs: []string{"result"}},
				{Name: "numpy.sum", Outputs: []string{"result"}},
			},
			errSubstr: "declared twice",
		},
		{
			name:      "no outputs",
			descs:     []Descriptor{{Name: "numpy.sum", VectorInputs: []string{"A"}}},
			errSubstr: "declares no output fields",
		},
		{
			name:      "duplicate field",
			descs:     []Descriptor{{Name: "numpy.sum", VectorInputs: []string{"A"}, Outputs: []string{"A"}}},
			errSubstr: "field 'A' declared more than once",
		},
		{
			name:      "non-finite identity",
			descs:     []Descriptor{{Name: "numpy.sum", Outputs: []string{"result"}, Identity: math.Inf(1)}},
			errSubstr: "identity must be a finite number",
		},
		{
			name:      "bad target",
			descs:     []Descriptor{{Name: "pystd", Outputs: []string{"result"}, Target: "std"}},
			errSubstr: "is not a module.symbol path",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reg, err := New(tc.descs...)
			require.Nil(t, reg)
			require.ErrorContains(t, err, "registry validation failed")
			require.ErrorContains(t, err, tc.errSubstr)
		})
	}
}
