package value

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var numberList = cty.List(cty.Number)

// AsNumericSequence interprets v as an ordered sequence of float64.
//
// Only a known, non-null list of numbers or a tuple whose elements are all
// numbers qualifies. Text is never parsed, sets are rejected because they
// carry no order, and a single null element or a number outside the float64
// range rejects the whole value.
func AsNumericSequence(v cty.Value) ([]float64, bool) {
	if v.Type() == cty.NilType || v.IsMarked() || v.IsNull() || !v.IsWhollyKnown() {
		return nil, false
	}

	ty := v.Type()
	switch {
	case ty.IsListType():
		if !ty.ElementType().Equals(cty.Number) {
			return nil, false
		}
	case ty.IsTupleType():
		for _, et := range ty.TupleElementTypes() {
			if !et.Equals(cty.Number) {
				return nil, false
			}
		}
	default:
		return nil, false
	}

	if v.LengthInt() == 0 {
		return []float64{}, true
	}

	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if ev.IsNull() {
			return nil, false
		}
	}

	list := v
	if ty.IsTupleType() {
		converted, err := convert.Convert(v, numberList)
		if err != nil {
			return nil, false
		}
		list = converted
	}

	var out []float64
	if err := gocty.FromCtyValue(list, &out); err != nil {
		return nil, false
	}
	return out, true
}
