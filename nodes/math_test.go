package nodes

import (
	"testing"

	"github.com/lumenctl/lumen/value"
)

func TestAdd(t *testing.T) {
	ctx := newFakeCtx()
	ctx.setInput("n", "a", value.NewScalar(2))
	ctx.setInput("n", "b", value.NewScalar(3))
	out := evalOnce("Add", "n", nil, ctx)
	if got := value.AsScalar(out["result"], -1); got != 5 {
		t.Errorf("Add(2,3) = %v, want 5", got)
	}
}

func TestMultiply(t *testing.T) {
	ctx := newFakeCtx()
	ctx.setInput("n", "a", value.NewScalar(2))
	ctx.setInput("n", "b", value.NewScalar(3))
	out := evalOnce("Multiply", "n", nil, ctx)
	if got := value.AsScalar(out["result"], -1); got != 6 {
		t.Errorf("Multiply(2,3) = %v, want 6", got)
	}
}

// TestClamp01Idempotent exercises spec.md §8's Clamp01 idempotence law:
// clamping an already-in-range value, or a clamped value again, is a no-op.
func TestClamp01Idempotent(t *testing.T) {
	for _, v := range []float64{-1, 0, 0.3, 1, 2} {
		ctx := newFakeCtx()
		ctx.setInput("c", "value", value.NewScalar(v))
		first := value.AsScalar(evalOnce("Clamp01", "c", nil, ctx)["result"], -1)

		ctx2 := newFakeCtx()
		ctx2.setInput("c", "value", value.NewScalar(first))
		second := value.AsScalar(evalOnce("Clamp01", "c", nil, ctx2)["result"], -1)

		if first != second {
			t.Errorf("Clamp01(Clamp01(%v)) = %v, want %v", v, second, first)
		}
		if first < 0 || first > 1 {
			t.Errorf("Clamp01(%v) = %v, out of [0,1]", v, first)
		}
	}
}

// TestMapRangeIdentity exercises spec.md §8's MapRange(v, m, M, m, M) ≡ v
// law for m != M.
func TestMapRangeIdentity(t *testing.T) {
	ctx := newFakeCtx()
	ctx.setInput("mr", "value", value.NewScalar(0.37))
	params := map[string]interface{}{"inMin": -2.0, "inMax": 5.0, "outMin": -2.0, "outMax": 5.0}
	out := evalOnce("MapRange", "mr", params, ctx)
	if got := value.AsScalar(out["result"], -999); got != 0.37 {
		t.Errorf("MapRange identity = %v, want 0.37", got)
	}
}

func TestMapRangeRescales(t *testing.T) {
	ctx := newFakeCtx()
	ctx.setInput("mr", "value", value.NewScalar(0.5))
	params := map[string]interface{}{"inMin": 0.0, "inMax": 1.0, "outMin": 0.0, "outMax": 100.0}
	out := evalOnce("MapRange", "mr", params, ctx)
	if got := value.AsScalar(out["result"], -1); got != 50 {
		t.Errorf("MapRange(0.5, 0..1, 0..100) = %v, want 50", got)
	}
}

func TestMapRangeDegenerateInputRangeReturnsOutMin(t *testing.T) {
	ctx := newFakeCtx()
	ctx.setInput("mr", "value", value.NewScalar(0.5))
	params := map[string]interface{}{"inMin": 3.0, "inMax": 3.0, "outMin": 10.0, "outMax": 20.0}
	out := evalOnce("MapRange", "mr", params, ctx)
	if got := value.AsScalar(out["result"], -1); got != 10 {
		t.Errorf("degenerate inMin==inMax: got %v, want outMin 10", got)
	}
}

// TestMapRangeIsParamsOnly exercises the params-only decision documented in
// DESIGN.md: MapRange declares no inMin/inMax/outMin/outMax input ports, so
// setting one on the fake context must not affect the result.
func TestMapRangeIsParamsOnly(t *testing.T) {
	ctx := newFakeCtx()
	ctx.setInput("mr", "value", value.NewScalar(1))
	ctx.setInput("mr", "outMax", value.NewScalar(10))
	params := map[string]interface{}{"inMin": 0.0, "inMax": 1.0, "outMin": 0.0, "outMax": 1.0}
	out := evalOnce("MapRange", "mr", params, ctx)
	if got := value.AsScalar(out["result"], -1); got != 1 {
		t.Errorf("outMax input should be ignored, only the param used: got %v, want 1", got)
	}
}
