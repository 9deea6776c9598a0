package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		module string
		symbol string
	}{
		{name: "qualified", input: "numpy.sum", module: "numpy", symbol: "sum"},
		{name: "splits on last separator", input: "scipy.stats.kurtosis", module: "scipy.stats", symbol: "kurtosis"},
		{name: "bare alias", input: "pystd", module: "", symbol: "pystd"},
		{name: "trailing dot", input: "numpy.", module: "numpy", symbol: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			module, symbol := SplitName(tc.input)
			require.Equal(t, tc.module, module)
			require.Equal(t, tc.symbol, symbol)
		})
	}
}
