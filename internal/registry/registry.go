package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ID identifies a registered function. IDs are dense and assigned in
// registration order.
type ID uint16

// MaxFunctions is the capacity of the ID space.
const MaxFunctions = 1 << 16

// ErrUnknownFunction is matched by every error returned from Lookup.
var ErrUnknownFunction = errors.New("unknown function")

// UnknownFunctionError reports a name that is not registered.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function: %q", e.Name)
}

func (e *UnknownFunctionError) Unwrap() error {
	return ErrUnknownFunction
}

// Descriptor declares a primitive function.
type Descriptor struct {
	// Name is a bare alias or a dot-qualified "module.symbol" path.
	Name         string
	ScalarInputs []string
	VectorInputs []string
	Outputs      []string
	Description  string

	// Target is the external "module.symbol" address. Empty means Name.
	Target string
	// Identity is the result for an empty numeric input.
	Identity float64
}

// Address returns the external address of the routine behind d.
func (d *Descriptor) Address() string {
	if d.Target != "" {
		return d.Target
	}
	return d.Name
}

// Inputs returns every declared input field in canonical call order, which
// is alphabetical by field name.
func (d *Descriptor) Inputs() []string {
	fields := make([]string, 0, len(d.ScalarInputs)+len(d.VectorInputs))
	fields = append(fields, d.ScalarInputs...)
	fields = append(fields, d.VectorInputs...)
	sort.Strings(fields)
	return fields
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	c.ScalarInputs = append([]string(nil), d.ScalarInputs...)
	c.VectorInputs = append([]string(nil), d.VectorInputs...)
	c.Outputs = append([]string(nil), d.Outputs...)
	return &c
}

// Registry is the immutable name <-> ID index of registered functions.
type Registry struct {
	byName map[string]ID
	byID   []*Descriptor
}

// New validates descs and builds the registry from them. Any problem with
// the list is returned as a single error, and no partial registry is built.
func New(descs ...Descriptor) (*Registry, error) {
	if err := validate(descs); err != nil {
		return nil, err
	}

	r := &Registry{
		byName: make(map[string]ID, len(descs)),
		byID:   make([]*Descriptor, 0, len(descs)),
	}
	for i := range descs {
		id := ID(len(r.byID))
		r.byID = append(r.byID, descs[i].clone())
		r.byName[descs[i].Name] = id
	}
	return r, nil
}

// Lookup returns the ID registered for name.
func (r *Registry) Lookup(name string) (ID, error) {
	id, ok := r.byName[name]
	if !ok {
		return 0, &UnknownFunctionError{Name: name}
	}
	return id, nil
}

// Resolve returns the descriptor for id. IDs only come from Lookup, so an
// unregistered id is a programming error and panics.
func (r *Registry) Resolve(id ID) *Descriptor {
	if int(id) >= len(r.byID) {
		panic(fmt.Sprintf("registry: function id %d was never registered", id))
	}
	return r.byID[id]
}

// Names lists every registered name in ID order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.byID))
	for i, d := range r.byID {
		names[i] = d.Name
	}
	return names
}

// Len reports the number of registered functions.
func (r *Registry) Len() int {
	return len(r.byID)
}

// String is used when logging the catalog.
func (r *Registry) String() string {
	return "[" + strings.Join(r.Names(), ", ") + "]"
}
