package nodes

import (
	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

func init() {
	catalog.Register("ScalePosition", catalog.NodeDefinition{
		Label:    "Scale Position",
		Category: "position",
		Inputs: map[string]catalog.PortDefinition{
			"position": {Type: value.Position},
			"scale":    {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Position},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		p := value.AsPosition(input(ctx, node.ID, "position", value.NewPosition(value.PanTilt{})), value.PanTilt{})
		s := value.AsScalar(input(ctx, node.ID, "scale", value.NewScalar(1)), 1)
		result := value.PanTilt{Pan: p.Pan * s, Tilt: p.Tilt * s}
		return map[string]value.Value{"result": value.NewPosition(clampPosition(result))}
	})
}
