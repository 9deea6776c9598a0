package catalog

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/fsutil"
	"github.com/specialistvlad/primcall/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// manifestFile is the root of a function manifest.
type manifestFile struct {
	Functions []*functionBlock `hcl:"function,block"`
}

// functionBlock is one `function "name" { ... }` declaration.
type functionBlock struct {
	Name         string         `hcl:"name,label"`
	Description  string         `hcl:"description,optional"`
	ScalarInputs []string       `hcl:"scalar_inputs,optional"`
	VectorInputs []string       `hcl:"vector_inputs,optional"`
	Outputs      []string       `hcl:"outputs"`
	Target       string         `hcl:"target,optional"`
	Identity     hcl.Expression `hcl:"identity,optional"`
}

// Load returns the built-in functions followed by those declared under
// manifestPath. An empty path loads only the built-ins.
func Load(ctx context.Context, manifestPath string) ([]registry.Descriptor, error) {
	descs := Builtin()
	if manifestPath == "" {
		return descs, nil
	}
	extra, err := LoadManifests(ctx, manifestPath)
	if err != nil {
		return nil, err
	}
	return append(descs, extra...), nil
}

// LoadManifests reads every .hcl file under path and returns the functions
// they declare, in file order.
func LoadManifests(ctx context.Context, path string) ([]registry.Descriptor, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading function manifests...", "path", path)

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to walk manifest path: %w", err)
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found in path", "path", path)
		return nil, nil
	}

	parser := hclparse.NewParser()
	var descs []registry.Descriptor
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
		}

		var manifest manifestFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &manifest); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", filePath, diags)
		}

		for _, fb := range manifest.Functions {
			desc, err := translateFunction(fb)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", filePath, err)
			}
			descs = append(descs, desc)
		}
		logger.Debug("Loaded function manifest.", "file", filePath, "functions", len(manifest.Functions))
	}

	logger.Info("Function manifests loaded.", "functions_loaded", len(descs))
	return descs, nil
}

func translateFunction(fb *functionBlock) (registry.Descriptor, error) {
	identity, err := evalIdentity(fb.Identity)
	if err != nil {
		return registry.Descriptor{}, fmt.Errorf("function '%s': %w", fb.Name, err)
	}
	return registry.Descriptor{
		Name:         fb.Name,
		ScalarInputs: fb.ScalarInputs,
		VectorInputs: fb.VectorInputs,
		Outputs:      fb.Outputs,
		Description:  fb.Description,
		Target:       fb.Target,
		Identity:     identity,
	}, nil
}

// evalIdentity evaluates the optional identity attribute. Omitted means 0.
func evalIdentity(expr hcl.Expression) (float64, error) {
	if expr == nil {
		return 0, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("invalid identity: %w", diags)
	}
	if val.IsNull() {
		return 0, nil
	}
	if !val.Type().Equals(cty.Number) {
		return 0, fmt.Errorf("identity must be a number, got %s", val.Type().FriendlyName())
	}
	var f float64
	if err := gocty.FromCtyValue(val, &f); err != nil {
		return 0, fmt.Errorf("invalid identity: %w", err)
	}
	return f, nil
}
