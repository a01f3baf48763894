package nodes

import (
	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

func init() {
	catalog.Register("ScaleBundle", catalog.NodeDefinition{
		Label:    "Scale Bundle",
		Category: "bundle",
		Inputs: map[string]catalog.PortDefinition{
			"bundle": {Type: value.Bundle},
			"scale":  {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Bundle},
		},
	}, evalScaleBundle)

	catalog.Register("MergeBundle", catalog.NodeDefinition{
		Label:    "Merge Bundle",
		Category: "bundle",
		Inputs: map[string]catalog.PortDefinition{
			"base":     {Type: value.Bundle},
			"override": {Type: value.Bundle},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Bundle},
		},
	}, evalMergeBundle)

	// WriteAttributes is a sink: it produces no output-map entry. Its
	// resolved (selection, bundle, priority) is harvested directly by the
	// engine at the end of an instance's evaluation, not through Evaluate.
	catalog.Register("WriteAttributes", catalog.NodeDefinition{
		Label:    "Write Attributes",
		Category: "sink",
		Inputs: map[string]catalog.PortDefinition{
			"selection": {Type: value.Selection},
			"bundle":    {Type: value.Bundle},
		},
		Params: map[string]catalog.ParamDefinition{
			"priority": {Type: catalog.ParamNumber, Default: 0.0},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		return nil
	})
}

func scaleField(v *float64, s, lo, hi float64) *float64 {
	if v == nil {
		return nil
	}
	return f64ptr(clamp(*v*s, lo, hi))
}

func evalScaleBundle(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	b := value.AsBundle(input(ctx, node.ID, "bundle", value.NewBundle(value.AttributeBundle{})), value.AttributeBundle{})
	s := value.AsScalar(input(ctx, node.ID, "scale", value.NewScalar(1)), 1)

	result := value.AttributeBundle{
		Intensity: scaleField(b.Intensity, s, 0, 1),
		ColorR:    scaleField(b.ColorR, s, 0, 1),
		ColorG:    scaleField(b.ColorG, s, 0, 1),
		ColorB:    scaleField(b.ColorB, s, 0, 1),
		Pan:       scaleField(b.Pan, s, -1, 1),
		Tilt:      scaleField(b.Tilt, s, -1, 1),
		Zoom:      scaleField(b.Zoom, s, 0, 1),
	}
	return map[string]value.Value{"result": value.NewBundle(result)}
}

func evalMergeBundle(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	base := value.AsBundle(input(ctx, node.ID, "base", value.NewBundle(value.AttributeBundle{})), value.AttributeBundle{})
	override := value.AsBundle(input(ctx, node.ID, "override", value.NewBundle(value.AttributeBundle{})), value.AttributeBundle{})
	return map[string]value.Value{"result": value.NewBundle(base.Merge(override))}
}

func f64ptr(v float64) *float64 { return &v }
