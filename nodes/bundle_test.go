package nodes

import (
	"testing"

	"github.com/lumenctl/lumen/value"
)

func f64(v float64) *float64 { return &v }

// TestScaleBundleIdentityAtOne exercises spec.md §8's ScaleBundle(b, 1) ≡ b
// law, field by field, including that unset fields stay unset.
func TestScaleBundleIdentityAtOne(t *testing.T) {
	b := value.AttributeBundle{Intensity: f64(0.4), ColorR: f64(0.2), Pan: f64(-0.5)}
	ctx := newFakeCtx()
	ctx.setInput("sb", "bundle", value.NewBundle(b))
	ctx.setInput("sb", "scale", value.NewScalar(1))
	out := evalOnce("ScaleBundle", "sb", nil, ctx)
	got := value.AsBundle(out["result"], value.AttributeBundle{})

	if got.ColorG != nil || got.ColorB != nil || got.Tilt != nil || got.Zoom != nil {
		t.Errorf("expected unset fields to remain unset, got %+v", got)
	}
	if *got.Intensity != 0.4 || *got.ColorR != 0.2 || *got.Pan != -0.5 {
		t.Errorf("ScaleBundle(b,1) changed a set field: %+v", got)
	}
}

func TestScaleBundleScalesAndClamps(t *testing.T) {
	b := value.AttributeBundle{Intensity: f64(0.8), Pan: f64(0.9)}
	ctx := newFakeCtx()
	ctx.setInput("sb", "bundle", value.NewBundle(b))
	ctx.setInput("sb", "scale", value.NewScalar(2))
	out := evalOnce("ScaleBundle", "sb", nil, ctx)
	got := value.AsBundle(out["result"], value.AttributeBundle{})
	if *got.Intensity != 1 {
		t.Errorf("expected intensity clamped to 1, got %v", *got.Intensity)
	}
	if *got.Pan != 1 {
		t.Errorf("expected pan clamped to 1, got %v", *got.Pan)
	}
}

func TestMergeBundleOverrideWinsPerField(t *testing.T) {
	base := value.AttributeBundle{Intensity: f64(0.5), ColorR: f64(0.1), ColorG: f64(0.2)}
	override := value.AttributeBundle{ColorG: f64(0.9)}
	ctx := newFakeCtx()
	ctx.setInput("mb", "base", value.NewBundle(base))
	ctx.setInput("mb", "override", value.NewBundle(override))
	out := evalOnce("MergeBundle", "mb", nil, ctx)
	got := value.AsBundle(out["result"], value.AttributeBundle{})

	if *got.Intensity != 0.5 {
		t.Errorf("expected base intensity preserved, got %v", *got.Intensity)
	}
	if *got.ColorR != 0.1 {
		t.Errorf("expected base ColorR preserved, got %v", *got.ColorR)
	}
	if *got.ColorG != 0.9 {
		t.Errorf("expected override ColorG to win, got %v", *got.ColorG)
	}
}

// TestWriteAttributesProducesNoOutput exercises spec.md §4.5's statement
// that WriteAttributes is a sink: its (selection, bundle, priority) is
// harvested by the engine directly, not via an Evaluate return value.
func TestWriteAttributesProducesNoOutput(t *testing.T) {
	ctx := newFakeCtx()
	ctx.setInput("w", "selection", value.NewSelectionValue(value.NewSelection("f1")))
	ctx.setInput("w", "bundle", value.NewBundle(value.AttributeBundle{Intensity: f64(1)}))
	out := evalOnce("WriteAttributes", "w", map[string]interface{}{"priority": 5.0}, ctx)
	if out != nil {
		t.Errorf("expected WriteAttributes to return nil, got %v", out)
	}
}
