package registry

import (
	"fmt"
	"math"
	"strings"
)

// validate performs a strict check of the whole descriptor list before any
// of it is indexed.
func validate(descs []Descriptor) error {
	var errs []string

	if len(descs) > MaxFunctions {
		errs = append(errs, fmt.Sprintf("%d functions declared, but at most %d can be registered", len(descs), MaxFunctions))
	}

	seen := make(map[string]int, len(descs))
	for i, d := range descs {
		if strings.TrimSpace(d.Name) == "" {
			errs = append(errs, fmt.Sprintf("function #%d: name must not be empty", i))
			continue
		}
		if prev, dup := seen[d.Name]; dup {
			errs = append(errs, fmt.Sprintf("function '%s': declared twice (#%d and #%d)", d.Name, prev, i))
			continue
		}
		seen[d.Name] = i

		if len(d.Outputs) == 0 {
			errs = append(errs, fmt.Sprintf("function '%s': declares no output fields", d.Name))
		}

		fields := make(map[string]struct{})
		for _, group := range [][]string{d.ScalarInputs, d.VectorInputs, d.Outputs} {
			for _, f := range group {
				if f == "" {
					errs = append(errs, fmt.Sprintf("function '%s': field names must not be empty", d.Name))
					continue
				}
				if _, dup := fields[f]; dup {
					errs = append(errs, fmt.Sprintf("function '%s': field '%s' declared more than once", d.Name, f))
				}
				fields[f] = struct{}{}
			}
		}

		if math.IsNaN(d.Identity) || math.IsInf(d.Identity, 0) {
			errs = append(errs, fmt.Sprintf("function '%s': identity must be a finite number", d.Name))
		}

		if d.Target != "" && !strings.Contains(d.Target, ".") {
			errs = append(errs, fmt.Sprintf("function '%s': target '%s' is not a module.symbol path", d.Name, d.Target))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
