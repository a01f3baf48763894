package nodes

import (
	"math"

	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

// phaseState is the persistent state shared by the three LFO node types and
// by Chase, whose phase advances the same way (spec.md §4.5).
type phaseState struct {
	Phase float64
}

const phaseWrap = 1000

func init() {
	catalog.Register("SineLFO", catalog.NodeDefinition{
		Label:    "Sine LFO",
		Category: "oscillator",
		Inputs: map[string]catalog.PortDefinition{
			"speed": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"frequency": {Type: catalog.ParamNumber, Default: 1.0},
			"phase":     {Type: catalog.ParamNumber, Default: 0.0},
		},
	}, evalLFO(func(phase float64) float64 {
		return (math.Sin(2*math.Pi*phase) + 1) / 2
	}))

	catalog.Register("TriangleLFO", catalog.NodeDefinition{
		Label:    "Triangle LFO",
		Category: "oscillator",
		Inputs: map[string]catalog.PortDefinition{
			"speed": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"frequency": {Type: catalog.ParamNumber, Default: 1.0},
			"phase":     {Type: catalog.ParamNumber, Default: 0.0},
		},
	}, evalLFO(triangleWave))

	catalog.Register("SawLFO", catalog.NodeDefinition{
		Label:    "Saw LFO",
		Category: "oscillator",
		Inputs: map[string]catalog.PortDefinition{
			"speed": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"frequency": {Type: catalog.ParamNumber, Default: 1.0},
			"phase":     {Type: catalog.ParamNumber, Default: 0.0},
		},
	}, evalLFO(func(phase float64) float64 {
		return phase - math.Floor(phase)
	}))

	catalog.Register("Smooth", catalog.NodeDefinition{
		Label:    "Smooth",
		Category: "filter",
		Inputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"result": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"smoothing": {Type: catalog.ParamNumber, Default: 0.9},
		},
	}, evalSmooth)

	catalog.Register("Chase", catalog.NodeDefinition{
		Label:    "Chase",
		Category: "effect",
		Inputs: map[string]catalog.PortDefinition{
			"speed": {Type: value.Scalar},
		},
		Outputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"frequency": {Type: catalog.ParamNumber, Default: 1.0},
			"phase":     {Type: catalog.ParamNumber, Default: 0.0},
			"width":     {Type: catalog.ParamNumber, Default: 0.2},
		},
	}, evalChase)

	catalog.Register("Flash", catalog.NodeDefinition{
		Label:    "Flash",
		Category: "effect",
		Inputs: map[string]catalog.PortDefinition{
			"trigger": {Type: value.Trigger},
		},
		Outputs: map[string]catalog.PortDefinition{
			"value": {Type: value.Scalar},
		},
		Params: map[string]catalog.ParamDefinition{
			"attack": {Type: catalog.ParamNumber, Default: 0.05},
			"decay":  {Type: catalog.ParamNumber, Default: 0.3},
		},
	}, evalFlash)
}

// triangleWave produces a tent wave over phase mod 1: 0 at the integer
// boundary, 1 at the half-cycle, back to 0.
func triangleWave(phase float64) float64 {
	p := phase - math.Floor(phase)
	if p < 0.5 {
		return p * 2
	}
	return 2 - p*2
}

// evalLFO builds the shared SineLFO/TriangleLFO/SawLFO evaluator: phase
// advances by frequency*speed*deltaTime each tick, wrapped to avoid drift
// overflow, then shape maps phase to the output waveform.
func evalLFO(shape func(phase float64) float64) catalog.Evaluator {
	return func(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
		var st phaseState
		ctx.GetState(&st)
		if st.Phase == 0 {
			st.Phase = paramFloat(node, "phase", 0)
		}

		freq := paramFloat(node, "frequency", 1)
		speed := value.AsScalar(input(ctx, node.ID, "speed", value.NewScalar(1)), 1)
		st.Phase += freq * speed * ctx.DeltaTime()
		st.Phase = math.Mod(st.Phase, phaseWrap)

		ctx.SetState(st)
		return map[string]value.Value{"value": value.NewScalar(shape(st.Phase))}
	}
}

type smoothState struct {
	Prev        float64
	Initialized bool
}

func evalSmooth(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	v := value.AsScalar(input(ctx, node.ID, "value", value.NewScalar(0)), 0)
	smoothing := clamp(paramFloat(node, "smoothing", 0.9), 0, 1)

	var st smoothState
	ctx.GetState(&st)
	if !st.Initialized {
		st.Prev = v
		st.Initialized = true
	} else {
		st.Prev = st.Prev + (1-smoothing)*(v-st.Prev)
	}
	ctx.SetState(st)
	return map[string]value.Value{"result": value.NewScalar(st.Prev)}
}

// evalChase advances its phase exactly like an LFO and derives a single
// scalar brightness from phase and width -- a demonstrative effect, not a
// per-fixture modulator (per-fixture modulation would need a
// Selection-typed output this node does not have).
func evalChase(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	var st phaseState
	ctx.GetState(&st)
	if st.Phase == 0 {
		st.Phase = paramFloat(node, "phase", 0)
	}

	freq := paramFloat(node, "frequency", 1)
	speed := value.AsScalar(input(ctx, node.ID, "speed", value.NewScalar(1)), 1)
	st.Phase += freq * speed * ctx.DeltaTime()
	st.Phase = math.Mod(st.Phase, phaseWrap)
	ctx.SetState(st)

	width := clamp(paramFloat(node, "width", 0.2), 0, 1)
	p := st.Phase - math.Floor(st.Phase)
	var brightness float64
	if p < width {
		brightness = 1
	}
	return map[string]value.Value{"value": value.NewScalar(brightness)}
}

type flashState struct {
	EnvPhase     float64
	WasTriggered bool
	Active       bool
}

func evalFlash(node catalog.EvalNode, ctx catalog.EvalContext) map[string]value.Value {
	triggered := value.AsBool(input(ctx, node.ID, "trigger", value.NewBool(false)), false)
	attack := paramFloat(node, "attack", 0.05)
	decay := paramFloat(node, "decay", 0.3)

	var st flashState
	ctx.GetState(&st)

	if triggered && !st.WasTriggered {
		st.EnvPhase = 0
		st.Active = true
	}
	st.WasTriggered = triggered

	if !st.Active {
		ctx.SetState(st)
		return map[string]value.Value{"value": value.NewScalar(0)}
	}

	st.EnvPhase += ctx.DeltaTime()
	var out float64
	switch {
	case st.EnvPhase < attack:
		out = st.EnvPhase / attack
	case st.EnvPhase < attack+decay:
		out = 1 - (st.EnvPhase-attack)/decay
	default:
		st.Active = false
		st.EnvPhase = 0
		out = 0
	}

	ctx.SetState(st)
	return map[string]value.Value{"value": value.NewScalar(out)}
}
