package nodes

import (
	"testing"

	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

func TestTimeNode(t *testing.T) {
	ctx := newFakeCtx()
	ctx.now = 12.5
	out := evalOnce("Time", "t", nil, ctx)
	if got := value.AsScalar(out["t"], -1); got != 12.5 {
		t.Errorf("Time() = %v, want 12.5", got)
	}
}

func TestFaderReadsInputState(t *testing.T) {
	ctx := newFakeCtx()
	ctx.faders["master"] = 0.75
	out := evalOnce("Fader", "f", map[string]interface{}{"faderId": "master"}, ctx)
	if got := value.AsScalar(out["value"], -1); got != 0.75 {
		t.Errorf("Fader(master) = %v, want 0.75", got)
	}
}

func TestButtonReadsEdgeState(t *testing.T) {
	ctx := newFakeCtx()
	ctx.buttons["go"] = fakeButton{held: true, pressed: true, released: false}
	out := evalOnce("Button", "b", map[string]interface{}{"buttonId": "go"}, ctx)
	if !value.AsBool(out["down"], false) {
		t.Error("expected down = true")
	}
	if !value.AsBool(out["pressed"], false) {
		t.Error("expected pressed = true")
	}
	if value.AsBool(out["released"], true) {
		t.Error("expected released = false")
	}
}

func TestScalarAndBoolConstants(t *testing.T) {
	ctx := newFakeCtx()
	out := evalOnce("Scalar", "s", map[string]interface{}{"value": 3.5}, ctx)
	if got := value.AsScalar(out["value"], -1); got != 3.5 {
		t.Errorf("Scalar = %v, want 3.5", got)
	}

	out = evalOnce("Bool", "b", map[string]interface{}{"value": true}, ctx)
	if !value.AsBool(out["value"], false) {
		t.Error("expected Bool(true)")
	}
}

func TestColorAndPositionConstants(t *testing.T) {
	ctx := newFakeCtx()
	out := evalOnce("ColorConstant", "c", map[string]interface{}{"r": 1.0, "g": 0.5, "b": 0.0}, ctx)
	got := value.AsColor(out["color"], value.RGB{})
	if got != (value.RGB{R: 1, G: 0.5, B: 0}) {
		t.Errorf("ColorConstant = %v", got)
	}

	out = evalOnce("PositionConstant", "p", map[string]interface{}{"pan": 0.3, "tilt": -0.2}, ctx)
	pos := value.AsPosition(out["position"], value.PanTilt{})
	if pos != (value.PanTilt{Pan: 0.3, Tilt: -0.2}) {
		t.Errorf("PositionConstant = %v", pos)
	}
}

func TestSelectGroupUnionsFixturesAcrossGroupIds(t *testing.T) {
	ctx := newFakeCtx()
	ctx.groups["g1"] = []string{"f1", "f2"}
	ctx.groups["g2"] = []string{"f2", "f3"}
	out := evalOnce("SelectGroup", "sel", map[string]interface{}{
		"groupIds": []interface{}{"g1", "g2", "missing"},
	}, ctx)
	sel := value.AsSelection(out["selection"], nil)
	want := map[string]bool{"f1": true, "f2": true, "f3": true}
	if len(sel) != len(want) {
		t.Fatalf("selection = %v, want %v", sel.IDs(), want)
	}
	for id := range want {
		if _, ok := sel[id]; !ok {
			t.Errorf("expected %s in selection, got %v", id, sel.IDs())
		}
	}
}

func TestSelectGroupSingularFallback(t *testing.T) {
	ctx := newFakeCtx()
	ctx.groups["g1"] = []string{"f1"}
	out := evalOnce("SelectGroup", "sel", map[string]interface{}{"groupId": "g1"}, ctx)
	sel := value.AsSelection(out["selection"], nil)
	if _, ok := sel["f1"]; !ok || len(sel) != 1 {
		t.Errorf("selection = %v, want just f1", sel.IDs())
	}
}

func TestSelectFixtureList(t *testing.T) {
	ctx := newFakeCtx()
	out := evalOnce("SelectFixture", "sel", map[string]interface{}{
		"fixtureIds": []interface{}{"f1", "f2"},
	}, ctx)
	sel := value.AsSelection(out["selection"], nil)
	if len(sel) != 2 {
		t.Errorf("selection = %v, want 2 fixtures", sel.IDs())
	}
}

func TestPresetBundleKnownAndUnknown(t *testing.T) {
	ctx := newFakeCtx()
	ctx.presets["p1"] = catalog.PresetAttributes{Intensity: f64(0.6), ColorR: f64(1)}
	out := evalOnce("PresetBundle", "pre", map[string]interface{}{"presetId": "p1"}, ctx)
	b := value.AsBundle(out["bundle"], value.AttributeBundle{})
	if b.Intensity == nil || *b.Intensity != 0.6 || b.ColorR == nil || *b.ColorR != 1 {
		t.Errorf("PresetBundle(p1) = %+v", b)
	}

	out = evalOnce("PresetBundle", "pre", map[string]interface{}{"presetId": "missing"}, ctx)
	b = value.AsBundle(out["bundle"], value.AttributeBundle{Intensity: f64(-1)})
	if b.Intensity != nil {
		t.Errorf("expected empty bundle for unknown preset, got %+v", b)
	}
}
