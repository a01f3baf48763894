package nodes

import (
	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

func init() {
	catalog.Register("Time", catalog.NodeDefinition{
		Label:    "Time",
		Category: "source",
		Outputs: map[string]catalog.PortDefinition{
			"t": {Type: value.Scalar},
		},
	}, evalTime)

	catalog.Register("Fader", catalog.NodeDefinition{
		Label:    "Fader",
		Category: "input",
		Outputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"faderId": {Type: catalog.ParamString},
		},
	}, evalFader)

	catalog.Register("Button", catalog.NodeDefinition{
		Label:    "Button",
		Category: "input",
		Outputs: map[string]catalog.PortDefinition{
			"down":     {Type: value.Bool},
			"pressed":  {Type: value.Trigger},
			"released": {Type: value.Trigger},
		},
		Params: map[string]catalog.ParamDefinition{
			"buttonId": {Type: catalog.ParamString},
		},
	}, evalButton)

	catalog.Register("Scalar", catalog.NodeDefinition{
		Label:    "Scalar",
		Category: "constant",
		Outputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"value": {Type: catalog.ParamNumber, Default: 0.0},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		return map[string]value.Value{"value": value.NewScalar(paramFloat(node, "value", 0))}
	})

	catalog.Register("Bool", catalog.NodeDefinition{
		Label:    "Bool",
		Category: "constant",
		Outputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Bool},
		},
		Params: map[string]catalog.ParamDefinition{
			"value": {Type: catalog.ParamBool, Default: false},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		return map[string]value.Value{"value": value.NewBool(paramBool(node, "value", false))}
	})

	catalog.Register("ColorConstant", catalog.NodeDefinition{
		Label:    "Color Constant",
		Category: "constant",
		Outputs: map[string]catalog.PortDefinition{
			"color": {Type: value.Color},
		},
		Params: map[string]catalog.ParamDefinition{
			"r": {Type: catalog.ParamNumber, Default: 0.0},
			"g": {Type: catalog.ParamNumber, Default: 0.0},
			"b": {Type: catalog.ParamNumber, Default: 0.0},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		c := value.RGB{
			R: paramFloat(node, "r", 0),
			G: paramFloat(node, "g", 0),
			B: paramFloat(node, "b", 0),
		}
		return map[string]value.Value{"color": value.NewColor(c)}
	})

	catalog.Register("PositionConstant", catalog.NodeDefinition{
		Label:    "Position Constant",
		Category: "constant",
		Outputs: map[string]catalog.PortDefinition{
			"position": {Type: value.Position},
		},
		Params: map[string]catalog.ParamDefinition{
			"pan":  {Type: catalog.ParamNumber, Default: 0.0},
			"tilt": {Type: catalog.ParamNumber, Default: 0.0},
		},
	}, func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		p := value.PanTilt{Pan: paramFloat(node, "pan", 0), Tilt: paramFloat(node, "tilt", 0)}
		return map[string]value.Value{"position": value.NewPosition(p)}
	})

	catalog.Register("SelectGroup", catalog.NodeDefinition{
		Label:    "Select Group",
		Category: "selection",
		Outputs: map[string]catalog.PortDefinition{
			"selection": {Type: value.Selection},
		},
		Params: map[string]catalog.ParamDefinition{
			"groupId":  {Type: catalog.ParamString, Default: ""},
			"groupIds": {Type: catalog.ParamStringList, Default: []string{}},
		},
	}, evalSelectGroup)

	catalog.Register("SelectFixture", catalog.NodeDefinition{
		Label:    "Select Fixture",
		Category: "selection",
		Outputs: map[string]catalog.PortDefinition{
			"selection": {Type: value.Selection},
		},
		Params: map[string]catalog.ParamDefinition{
			"fixtureId":  {Type: catalog.ParamString, Default: ""},
			"fixtureIds": {Type: catalog.ParamStringList, Default: []string{}},
		},
	}, evalSelectFixture)

	catalog.Register("PresetBundle", catalog.NodeDefinition{
		Label:    "Preset Bundle",
		Category: "selection",
		Outputs: map[string]catalog.PortDefinition{
			"bundle": {Type: value.Bundle},
		},
		Params: map[string]catalog.ParamDefinition{
			"presetId": {Type: catalog.ParamString},
		},
	}, evalPresetBundle)
}

func evalTime(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	return map[string]value.Value{"t": value.NewScalar(ctx.Time())}
}

func evalFader(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	id := paramString(node, "faderId", "")
	return map[string]value.Value{"value": value.NewScalar(ctx.GetFader(id))}
}

func evalButton(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	id := paramString(node, "buttonId", "")
	held, pressed, released := ctx.GetButton(id)
	return map[string]value.Value{
		"down":     value.NewBool(held),
		"pressed":  value.NewTrigger(pressed),
		"released": value.NewTrigger(released),
	}
}

// groupIDs returns the effective group id list for a node declaring either
// `groupId` (singular) or `groupIds` (plural); both are supported, per
// spec.md §4.5 "SelectGroup: union of group.fixtureIds for each id in
// params.groupIds (or the single groupId)".
func groupIDs(node catalog.EvalNode) []string {
	if ids := paramStringSlice(node, "groupIds"); len(ids) > 0 {
		return ids
	}
	if id := paramString(node, "groupId", ""); id != "" {
		return []string{id}
	}
	return nil
}

func fixtureIDs(node catalog.EvalNode) []string {
	if ids := paramStringSlice(node, "fixtureIds"); len(ids) > 0 {
		return ids
	}
	if id := paramString(node, "fixtureId", ""); id != "" {
		return []string{id}
	}
	return nil
}

func evalSelectGroup(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	sel := value.Selection{}
	for _, gid := range groupIDs(node) {
		fixtures, ok := ctx.GetGroup(gid)
		if !ok {
			continue // missing group contributes nothing (spec.md §4.5)
		}
		for _, fid := range fixtures {
			sel[fid] = struct{}{}
		}
	}
	return map[string]value.Value{"selection": value.NewSelectionValue(sel)}
}

func evalSelectFixture(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	sel := value.NewSelection(fixtureIDs(node)...)
	return map[string]value.Value{"selection": value.NewSelectionValue(sel)}
}

func evalPresetBundle(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	id := paramString(node, "presetId", "")
	preset, ok := ctx.GetPreset(id)
	if !ok {
		return map[string]value.Value{"bundle": value.NewBundle(value.AttributeBundle{})}
	}
	return map[string]value.Value{"bundle": value.NewBundle(value.AttributeBundle{
		Intensity: preset.Intensity,
		ColorR:    preset.ColorR,
		ColorG:    preset.ColorG,
		ColorB:    preset.ColorB,
		Pan:       preset.Pan,
		Tilt:      preset.Tilt,
		Zoom:      preset.Zoom,
	})}
}
