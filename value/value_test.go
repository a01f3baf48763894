package value

import "testing"

func TestAsScalar(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		def  float64
		want float64
	}{
		{"scalar passes", NewScalar(0.25), 0, 0.25},
		{"bool true is 1", NewBool(true), 0, 1},
		{"bool false is 0", NewBool(false), 9, 0},
		{"trigger fired is 1", NewTrigger(true), 0, 1},
		{"trigger unfired is 0", NewTrigger(false), 9, 0},
		{"color falls back", NewColor(RGB{1, 1, 1}), 0.5, 0.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := AsScalar(c.v, c.def); got != c.want {
				t.Errorf("AsScalar() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestAsBool(t *testing.T) {
	if !AsBool(NewScalar(0.5), false) {
		t.Error("0.5 should coerce to true (>= 0.5)")
	}
	if AsBool(NewScalar(0.49), true) {
		t.Error("0.49 should coerce to false")
	}
	if AsBool(NewTrigger(false), true) {
		t.Error("unfired trigger should coerce to false regardless of default")
	}
}

func TestAsBundleFromColorPositionScalar(t *testing.T) {
	b := AsBundle(NewColor(RGB{1, 0, 0}), AttributeBundle{})
	if b.ColorR == nil || *b.ColorR != 1 || b.ColorG == nil || *b.ColorG != 0 {
		t.Errorf("color->bundle failed: %+v", b)
	}

	b = AsBundle(NewPosition(PanTilt{Pan: 0.5, Tilt: -0.5}), AttributeBundle{})
	if b.Pan == nil || *b.Pan != 0.5 || b.Tilt == nil || *b.Tilt != -0.5 {
		t.Errorf("position->bundle failed: %+v", b)
	}

	b = AsBundle(NewScalar(0.75), AttributeBundle{})
	if b.Intensity == nil || *b.Intensity != 0.75 {
		t.Errorf("scalar->bundle failed: %+v", b)
	}
}

func TestBundleMergeFieldByField(t *testing.T) {
	a := AttributeBundle{ColorR: f64ptr(1), ColorG: f64ptr(0)}
	other := AttributeBundle{ColorG: f64ptr(1)}
	merged := a.Merge(other)
	if merged.ColorR == nil || *merged.ColorR != 1 {
		t.Errorf("merge overwrote R unexpectedly: %+v", merged)
	}
	if merged.ColorG == nil || *merged.ColorG != 1 {
		t.Errorf("merge did not apply other's G: %+v", merged)
	}
}

func TestSelectionUnionDedup(t *testing.T) {
	a := NewSelection("f1", "f2")
	b := NewSelection("f2", "f3")
	u := a.Union(b)
	if len(u) != 3 {
		t.Errorf("expected 3 unique ids, got %d: %v", len(u), u.IDs())
	}
}
