package nodes

import (
	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

func init() {
	catalog.Register("Add", catalog.NodeDefinition{
		Label:    "Add",
		Category: "math",
		Inputs: map[string]catalog.PortDefinition{
			"a": {Type: value.Scalar},
			"b": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Scalar},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		a := value.AsScalar(input(ctx, node.ID, "a", value.NewScalar(0)), 0)
		b := value.AsScalar(input(ctx, node.ID, "b", value.NewScalar(0)), 0)
		return map[string]value.Value{"result": value.NewScalar(a + b)}
	})

	catalog.Register("Multiply", catalog.NodeDefinition{
		Label:    "Multiply",
		Category: "math",
		Inputs: map[string]catalog.PortDefinition{
			"a": {Type: value.Scalar},
			"b": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Scalar},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		a := value.AsScalar(input(ctx, node.ID, "a", value.NewScalar(1)), 1)
		b := value.AsScalar(input(ctx, node.ID, "b", value.NewScalar(1)), 1)
		return map[string]value.Value{"result": value.NewScalar(a * b)}
	})

	catalog.Register("Clamp01", catalog.NodeDefinition{
		Label:    "Clamp01",
		Category: "math",
		Inputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Scalar},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		v := value.AsScalar(input(ctx, node.ID, "value", value.NewScalar(0)), 0)
		return map[string]value.Value{"result": value.NewScalar(clamp(v, 0, 1))}
	})

	catalog.Register("MapRange", catalog.NodeDefinition{
		Label:    "Map Range",
		Category: "math",
		Inputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"inMin":  {Type: catalog.ParamNumber, Default: 0.0},
			"inMax":  {Type: catalog.ParamNumber, Default: 1.0},
			"outMin": {Type: catalog.ParamNumber, Default: 0.0},
			"outMax": {Type: catalog.ParamNumber, Default: 1.0},
		},
	}, evalMapRange)
}

// evalMapRange reads inMin/inMax/outMin/outMax from params only -- the
// canonical choice documented for the ambiguous source behaviour (params,
// not connected inputs; MapRange declares no such input ports, so the
// compiler never admits an edge to them).
func evalMapRange(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	v := value.AsScalar(input(ctx, node.ID, "value", value.NewScalar(0)), 0)
	inMin := paramFloat(node, "inMin", 0)
	inMax := paramFloat(node, "inMax", 1)
	outMin := paramFloat(node, "outMin", 0)
	outMax := paramFloat(node, "outMax", 1)

	if inMin == inMax {
		return map[string]value.Value{"result": value.NewScalar(outMin)}
	}
	if inMin == outMin && inMax == outMax {
		// Identical ranges map v to itself exactly, without float round-off.
		return map[string]value.Value{"result": value.NewScalar(v)}
	}
	t := (v - inMin) / (inMax - inMin)
	return map[string]value.Value{"result": value.NewScalar(outMin + t*(outMax-outMin))}
}
