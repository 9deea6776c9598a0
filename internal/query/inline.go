package query

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/primcall/internal/dispatch"
)

// InlineSource is the source locator of calls built from command-line
// arguments.
const InlineSource = "<command line>"

// ParseArguments parses NAME=EXPR pairs, where EXPR is an HCL literal such
// as [1, 2, 3] or "text".
func ParseArguments(pairs []string) ([]Argument, error) {
	args := make([]Argument, 0, len(pairs))
	for _, pair := range pairs {
		name, src, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || !hclsyntax.ValidIdentifier(name) {
			return nil, fmt.Errorf("argument %q must have the form NAME=VALUE", pair)
		}

		expr, diags := hclsyntax.ParseExpression([]byte(src), InlineSource, hcl.InitialPos)
		if diags.HasErrors() {
			return nil, fmt.Errorf("argument '%s': %w", name, diags)
		}
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("argument '%s': %w", name, diags)
		}
		args = append(args, Argument{Name: name, Value: val})
	}
	return args, nil
}

// Inline compiles a single-call query from command-line arguments.
func Inline(d *dispatch.Dispatcher, function string, pairs []string) (*Query, error) {
	args, err := ParseArguments(pairs)
	if err != nil {
		return nil, err
	}
	call, err := Compile(d, function, function, args, InlineSource)
	if err != nil {
		return nil, err
	}
	return &Query{Calls: []*Call{call}}, nil
}
