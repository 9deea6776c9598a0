// Package catalog supplies the declarative list of primitive functions the
// registry is built from: the functions compiled into the binary, plus any
// declared in HCL manifests.
package catalog

import (
	"github.com/specialistvlad/primcall/internal/engine"
	"github.com/specialistvlad/primcall/internal/registry"
)

// Builtin returns the functions every runtime knows. Each takes a single
// vector input A and yields a single result. Empty input yields the
// reduction's identity: 1 for prod, 0 for the rest.
func Builtin() []registry.Descriptor {
	return []registry.Descriptor{
		reduction("sum", "Sum of the elements.", 0),
		reduction("mean", "Arithmetic mean of the elements.", 0),
		reduction("average", "Unweighted average of the elements.", 0),
		reduction("std", "Population standard deviation of the elements.", 0),
		reduction("var", "Population variance of the elements.", 0),
		reduction("amin", "Minimum element.", 0),
		reduction("amax", "Maximum element.", 0),
		reduction("median", "Median of the elements.", 0),
		reduction("prod", "Product of the elements.", 1),
		reduction("ptp", "Range (maximum minus minimum) of the elements.", 0),
		{
			Name:         "pystd",
			VectorInputs: []string{"A"},
			Outputs:      []string{"result"},
			Description:  "Python Standard Deviation.",
			Target:       engine.NumpyModule + ".std",
		},
	}
}

func reduction(symbol, description string, identity float64) registry.Descriptor {
	return registry.Descriptor{
		Name:         engine.NumpyModule + "." + symbol,
		VectorInputs: []string{"A"},
		Outputs:      []string{"result"},
		Description:  description,
		Identity:     identity,
	}
}
