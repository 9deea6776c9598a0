package engine

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NumpyModule is the module name the built-in catalog addresses.
const NumpyModule = "numpy"

var errEmptyInput = errors.New("zero-size array to reduction operation")

// numpyRoutines mirrors the numpy reductions with gonum. std and var are
// population statistics (numpy's default ddof=0).
func numpyRoutines() map[string]Routine {
	return map[string]Routine{
		"sum":     func(x []float64) (float64, error) { return floats.Sum(x), nil },
		"prod":    func(x []float64) (float64, error) { return floats.Prod(x), nil },
		"mean":    nonEmpty(func(x []float64) float64 { return stat.Mean(x, nil) }),
		"average": nonEmpty(func(x []float64) float64 { return stat.Mean(x, nil) }),
		"std":     nonEmpty(func(x []float64) float64 { return stat.PopStdDev(x, nil) }),
		"var":     nonEmpty(func(x []float64) float64 { return stat.PopVariance(x, nil) }),
		"amin":    nonEmpty(floats.Min),
		"amax":    nonEmpty(floats.Max),
		"ptp":     nonEmpty(func(x []float64) float64 { return floats.Max(x) - floats.Min(x) }),
		"median":  nonEmpty(median),
	}
}

func nonEmpty(fn func([]float64) float64) Routine {
	return func(x []float64) (float64, error) {
		if len(x) == 0 {
			return 0, errEmptyInput
		}
		return fn(x), nil
	}
}

// median averages the two middle elements for even lengths, as numpy does.
func median(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
