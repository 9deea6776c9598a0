package value

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Row is an ordered tuple of values. Output rows match a function's declared
// outputs; error rows are always {source_locator, message}.
type Row []cty.Value

// Text wraps a Go string as a Text value.
func Text(s string) cty.Value {
	return cty.StringVal(s)
}

// Float wraps a float64 as a FloatingPoint value. NaN is not representable
// and panics, so callers must reject it first.
func Float(f float64) cty.Value {
	return cty.NumberFloatVal(f)
}

// Repr renders values the way they appear in diagnostics.
func Repr(vals []cty.Value) string {
	return fmt.Sprintf("%#v", vals)
}

// RowsJSON encodes rows as a JSON array of arrays using the implied cty
// type of the whole result set.
func RowsJSON(rows []Row) ([]byte, error) {
	tuples := make([]cty.Value, 0, len(rows))
	for _, r := range rows {
		tuples = append(tuples, cty.TupleVal(r))
	}
	all := cty.TupleVal(tuples)
	out, err := ctyjson.Marshal(all, all.Type())
	if err != nil {
		return nil, fmt.Errorf("unable to encode rows as JSON: %w", err)
	}
	return out, nil
}
