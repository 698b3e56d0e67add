package discovery

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/agentgrid/internal/agent"
	"github.com/vk/agentgrid/internal/ctxlog"
	"github.com/vk/agentgrid/internal/registry"
)

// manifestFile is the top-level structure of an agent manifest, expecting
// one or more 'agent' blocks.
type manifestFile struct {
	Agents []*manifestAgent `hcl:"agent,block"`
}

// manifestAgent represents a single 'agent' block for decoding purposes.
type manifestAgent struct {
	Name         string    `hcl:"name,label"`
	Factory      string    `hcl:"factory"`
	Tags         []string  `hcl:"tags,optional"`
	Priority     *int      `hcl:"priority,optional"`
	Enabled      *bool     `hcl:"enabled,optional"`
	Dependencies []string  `hcl:"dependencies,optional"`
	Attributes   cty.Value `hcl:"attributes,optional"`
}

// loadManifest parses one manifest file and collects a pending registration
// per agent block. Entries referencing unknown factory symbols or carrying
// invalid metadata are logged and skipped individually. Returns the number
// of pending registrations collected from this file.
func loadManifest(ctx context.Context, reg *registry.Registry, parser *hclparse.Parser, filePath string) (int, error) {
	logger := ctxlog.FromContext(ctx)

	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return 0, fmt.Errorf("failed to parse manifest %s: %w", filePath, diags)
	}

	var mf manifestFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &mf); diags.HasErrors() {
		return 0, fmt.Errorf("failed to decode manifest %s: %w", filePath, diags)
	}

	collected := 0
	for _, block := range mf.Agents {
		factory, ok := reg.Factory(block.Factory)
		if !ok {
			logger.Error("Manifest references unknown factory symbol, skipping agent.",
				"file", filePath, "agent", block.Name, "factory", block.Factory)
			continue
		}

		attrs, err := attributesToNative(block.Attributes)
		if err != nil {
			logger.Error("Manifest attributes could not be decoded, skipping agent.",
				"file", filePath, "agent", block.Name, "error", err)
			continue
		}

		priority := agent.DefaultPriority
		if block.Priority != nil {
			priority = *block.Priority
		}
		enabled := true
		if block.Enabled != nil {
			enabled = *block.Enabled
		}

		md, err := agent.NewMetadata(agent.Metadata{
			Name:         block.Name,
			Source:       agent.SourceManifest,
			Tags:         block.Tags,
			Priority:     priority,
			Enabled:      enabled,
			Dependencies: block.Dependencies,
			Attributes:   attrs,
		})
		if err != nil {
			logger.Error("Manifest agent has invalid metadata, skipping.",
				"file", filePath, "agent", block.Name, "error", err)
			continue
		}

		if reg.RegisterPending(&registry.Pending{
			Name:     block.Name,
			Factory:  factory,
			Metadata: md,
			Origin:   filePath,
		}) {
			collected++
		}
	}

	logger.Debug("Loaded agent manifest.", "file", filePath, "agents", collected)
	return collected, nil
}

// attributesToNative converts the optional 'attributes' object into a plain
// Go map. A missing attribute yields nil; anything other than an object or
// map is an error.
func attributesToNative(v cty.Value) (map[string]any, error) {
	if v == cty.NilVal || v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("attributes must be an object, got %s", v.Type().FriendlyName())
	}
	native, err := ctyToNative(v)
	if err != nil {
		return nil, err
	}
	attrs, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("attributes must decode to a map, got %T", native)
	}
	return attrs, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go
// counterpart. Numbers become float64, the common representation for a
// generic 'any' target.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0)
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported attribute type %s", ty.FriendlyName())
	}
}
