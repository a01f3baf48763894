package nodes

import (
	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

func init() {
	catalog.Register("MixColor", catalog.NodeDefinition{
		Label:    "Mix Color",
		Category: "color",
		Inputs: map[string]catalog.PortDefinition{
			"a":   {Type: value.Color},
			"b":   {Type: value.Color},
			"mix": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Color},
		},
	}, evalMixColor)

	catalog.Register("ScaleColor", catalog.NodeDefinition{
		Label:    "Scale Color",
		Category: "color",
		Inputs: map[string]catalog.PortDefinition{
			"color": {Type: value.Color},
			"scale": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Color},
		},
	}, evalScaleColor)

	catalog.Register("ColorToBundle", catalog.NodeDefinition{
		Label:    "Color To Bundle",
		Category: "color",
		Inputs: map[string]catalog.PortDefinition{
			"color": {Type: value.Color},
		},
		Outputs: map[string]catalog.PortDefinition{
			"bundle": {Type: value.Bundle},
		},
	}, evalColorToBundle)
}

func evalMixColor(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	a := value.AsColor(input(ctx, node.ID, "a", value.NewColor(value.RGB{})), value.RGB{})
	b := value.AsColor(input(ctx, node.ID, "b", value.NewColor(value.RGB{})), value.RGB{})
	mix := clamp(value.AsScalar(input(ctx, node.ID, "mix", value.NewScalar(0)), 0), 0, 1)

	result := value.RGB{
		R: a.R + (b.R-a.R)*mix,
		G: a.G + (b.G-a.G)*mix,
		B: a.B + (b.B-a.B)*mix,
	}
	return map[string]value.Value{"result": value.NewColor(clampColor(result))}
}

func evalScaleColor(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	c := value.AsColor(input(ctx, node.ID, "color", value.NewColor(value.RGB{})), value.RGB{})
	s := value.AsScalar(input(ctx, node.ID, "scale", value.NewScalar(1)), 1)
	result := value.RGB{R: c.R * s, G: c.G * s, B: c.B * s}
	return map[string]value.Value{"result": value.NewColor(clampColor(result))}
}

func evalColorToBundle(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	c := value.AsColor(input(ctx, node.ID, "color", value.NewColor(value.RGB{})), value.RGB{})
	return map[string]value.Value{"bundle": value.NewBundle(value.AttributeBundle{}.SetColor(c))}
}
