package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/primcall/internal/binding"
	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/dispatch"
	"github.com/specialistvlad/primcall/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// ErrArgumentMismatch is matched when a call's arguments do not name exactly
// the function's declared inputs.
var ErrArgumentMismatch = errors.New("arguments do not match declared inputs")

// queryFile is the root of a query file.
type queryFile struct {
	Calls []*callBlock `hcl:"call,block"`
}

type callBlock struct {
	Function  string          `hcl:"function,label"`
	Name      string          `hcl:"name,label"`
	Arguments *argumentsBlock `hcl:"arguments,block"`
	DefRange  hcl.Range       `hcl:",def_range"`
}

type argumentsBlock struct {
	Attrs hcl.Attributes `hcl:",remain"`
}

// Call is one compiled call with its inputs already evaluated.
type Call struct {
	Name   string
	Site   *dispatch.CallSite
	Inputs []cty.Value
	Source string
}

// Query is an ordered list of calls.
type Query struct {
	Calls []*Call
}

// Argument is a named input value.
type Argument struct {
	Name  string
	Value cty.Value
}

// Load parses every .hcl file under path and compiles the calls they declare
// against d. Calls keep file order, then block order. Any error is fatal for
// the whole query.
func Load(ctx context.Context, path string, d *dispatch.Dispatcher) (*Query, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading query files...", "path", path)

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to walk query path: %w", err)
	}
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no .hcl query files found in %s", path)
	}

	parser := hclparse.NewParser()
	q := &Query{}
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
		}

		var file queryFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode query %s: %w", filePath, diags)
		}

		for _, cb := range file.Calls {
			call, err := compileBlock(d, cb)
			if err != nil {
				return nil, fmt.Errorf("call '%s' at %s: %w", cb.Name, cb.DefRange, err)
			}
			q.Calls = append(q.Calls, call)
		}
		logger.Debug("Compiled query file.", "file", filePath, "calls", len(file.Calls))
	}

	logger.Info("Query compiled.", "calls", len(q.Calls))
	return q, nil
}

func compileBlock(d *dispatch.Dispatcher, cb *callBlock) (*Call, error) {
	var attrs hcl.Attributes
	if cb.Arguments != nil {
		attrs = cb.Arguments.Attrs
	}
	args, err := evalAttributes(attrs)
	if err != nil {
		return nil, err
	}
	return Compile(d, cb.Name, cb.Function, args, cb.DefRange.String())
}

// evalAttributes evaluates literal argument expressions in the order they
// appear in the source.
func evalAttributes(attrs hcl.Attributes) ([]Argument, error) {
	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	args := make([]Argument, 0, len(ordered))
	for _, attr := range ordered {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("argument '%s': %w", attr.Name, diags)
		}
		args = append(args, Argument{Name: attr.Name, Value: val})
	}
	return args, nil
}

// Compile resolves function in d's registry and binds args, given in slot
// order, to its declared inputs. An unknown function is returned as the
// registry's error.
func Compile(d *dispatch.Dispatcher, name, function string, args []Argument, source string) (*Call, error) {
	id, err := d.Registry().Lookup(function)
	if err != nil {
		return nil, err
	}
	desc := d.Registry().Resolve(id)

	slots := make(map[string]int, len(args))
	inputs := make([]cty.Value, len(args))
	for i, arg := range args {
		if _, dup := slots[arg.Name]; dup {
			return nil, fmt.Errorf("%w: argument '%s' given more than once", ErrArgumentMismatch, arg.Name)
		}
		slots[arg.Name] = i
		inputs[i] = arg.Value
	}

	declared := desc.Inputs()
	bindings := make([]binding.Binding, 0, len(declared))
	for field, input := range declared {
		slot, ok := slots[input]
		if !ok {
			return nil, fmt.Errorf("%w: function '%s' requires argument '%s'", ErrArgumentMismatch, function, input)
		}
		delete(slots, input)
		bindings = append(bindings, binding.Binding{Field: field, Slot: slot})
	}
	if len(slots) > 0 {
		extra := make([]string, 0, len(slots))
		for n := range slots {
			extra = append(extra, n)
		}
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: function '%s' has no input named '%s'", ErrArgumentMismatch, function, strings.Join(extra, "', '"))
	}

	site, err := d.Compile(id, bindings)
	if err != nil {
		return nil, err
	}
	return &Call{Name: name, Site: site, Inputs: inputs, Source: source}, nil
}
