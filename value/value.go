// Package value implements the tagged runtime value model shared by every
// node evaluator: a single Value variant over the closed PortType set, plus
// the coercions evaluators use to read a value as a different shape.
package value

import "fmt"

//go:generate stringer -type=PortType -output=porttype_string.go

// PortType is the closed set of port/value kinds a graph edge can carry.
type PortType int

const (
	// Scalar is a plain floating point number.
	Scalar PortType = iota
	// Bool is a boolean.
	Bool
	// Trigger is a one-frame edge event.
	Trigger
	// Color is an (r, g, b) triple, each in 0..1.
	Color
	// Position is a (pan, tilt) pair, each in -1..1.
	Position
	// Bundle is a partial AttributeBundle.
	Bundle
	// Selection is an unordered set of fixture ids.
	Selection
)

// RGB is a color value; each component is expected in 0..1 but is not
// clamped by the type itself.
type RGB struct {
	R, G, B float64
}

// PanTilt is a position value; each component is expected in -1..1.
type PanTilt struct {
	Pan, Tilt float64
}

// AttributeBundle is a partial per-fixture attribute record. A pointer field
// being nil means "not written" -- that distinction is load-bearing: it is
// what lets two different WriteAttributes nodes each set one field of the
// same fixture's color (e.g. one sets red, another sets green) without
// clobbering the other's. Color is split into three independent optional
// channels for exactly this reason; a PortType Color value (used on graph
// edges) is always fully specified and only becomes partial once it lands
// in a Bundle.
type AttributeBundle struct {
	Intensity *float64
	ColorR    *float64
	ColorG    *float64
	ColorB    *float64
	Pan       *float64
	Tilt      *float64
	Zoom      *float64
}

func f64ptr(v float64) *float64 { return &v }

// HasColor reports whether any color channel is set.
func (b AttributeBundle) HasColor() bool {
	return b.ColorR != nil || b.ColorG != nil || b.ColorB != nil
}

// SetColor overwrites all three color channels at once, e.g. when wrapping a
// fully-specified Color value into a Bundle.
func (b AttributeBundle) SetColor(c RGB) AttributeBundle {
	b.ColorR = f64ptr(c.R)
	b.ColorG = f64ptr(c.G)
	b.ColorB = f64ptr(c.B)
	return b
}

// Clone returns a deep copy of the bundle so callers can mutate the result
// without aliasing the original's pointer fields.
func (b AttributeBundle) Clone() AttributeBundle {
	out := AttributeBundle{}
	if b.Intensity != nil {
		out.Intensity = f64ptr(*b.Intensity)
	}
	if b.ColorR != nil {
		out.ColorR = f64ptr(*b.ColorR)
	}
	if b.ColorG != nil {
		out.ColorG = f64ptr(*b.ColorG)
	}
	if b.ColorB != nil {
		out.ColorB = f64ptr(*b.ColorB)
	}
	if b.Pan != nil {
		out.Pan = f64ptr(*b.Pan)
	}
	if b.Tilt != nil {
		out.Tilt = f64ptr(*b.Tilt)
	}
	if b.Zoom != nil {
		out.Zoom = f64ptr(*b.Zoom)
	}
	return out
}

// Merge overlays `other` onto a copy of b: every field `other` sets wins,
// fields it leaves unset are kept from b. Color merges channel by channel --
// an `other` that only sets ColorG leaves ColorR/ColorB exactly as b had
// them, unset or not.
func (b AttributeBundle) Merge(other AttributeBundle) AttributeBundle {
	out := b.Clone()
	if other.Intensity != nil {
		out.Intensity = f64ptr(*other.Intensity)
	}
	if other.ColorR != nil {
		out.ColorR = f64ptr(*other.ColorR)
	}
	if other.ColorG != nil {
		out.ColorG = f64ptr(*other.ColorG)
	}
	if other.ColorB != nil {
		out.ColorB = f64ptr(*other.ColorB)
	}
	if other.Pan != nil {
		out.Pan = f64ptr(*other.Pan)
	}
	if other.Tilt != nil {
		out.Tilt = f64ptr(*other.Tilt)
	}
	if other.Zoom != nil {
		out.Zoom = f64ptr(*other.Zoom)
	}
	return out
}

// Selection is an unordered set of fixture ids.
type Selection map[string]struct{}

// NewSelection builds a Selection from a slice of fixture ids.
func NewSelection(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Union returns a new Selection containing every id in s or other.
func (s Selection) Union(other Selection) Selection {
	out := make(Selection, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// IDs returns the selection's fixture ids, order unspecified.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Value is a tagged variant over PortType. Exactly one of the typed fields
// is meaningful, selected by Kind.
type Value struct {
	Kind      PortType
	ScalarV   float64
	BoolV     bool
	TriggerV  bool
	ColorV    RGB
	PositionV PanTilt
	BundleV   AttributeBundle
	SelectV   Selection
}

// NewScalar wraps a float64 as a Scalar value.
func NewScalar(v float64) Value { return Value{Kind: Scalar, ScalarV: v} }

// NewBool wraps a bool as a Bool value.
func NewBool(v bool) Value { return Value{Kind: Bool, BoolV: v} }

// NewTrigger wraps an edge-fired flag as a Trigger value.
func NewTrigger(fired bool) Value { return Value{Kind: Trigger, TriggerV: fired} }

// NewColor wraps an RGB as a Color value.
func NewColor(c RGB) Value { return Value{Kind: Color, ColorV: c} }

// NewPosition wraps a PanTilt as a Position value.
func NewPosition(p PanTilt) Value { return Value{Kind: Position, PositionV: p} }

// NewBundle wraps an AttributeBundle as a Bundle value.
func NewBundle(b AttributeBundle) Value { return Value{Kind: Bundle, BundleV: b} }

// NewSelectionValue wraps a Selection as a Selection value.
func NewSelectionValue(s Selection) Value { return Value{Kind: Selection, SelectV: s} }

// String renders the value for logging; it is not the wire format.
func (v Value) String() string {
	switch v.Kind {
	case Scalar:
		return fmt.Sprintf("Scalar(%v)", v.ScalarV)
	case Bool:
		return fmt.Sprintf("Bool(%v)", v.BoolV)
	case Trigger:
		return fmt.Sprintf("Trigger(%v)", v.TriggerV)
	case Color:
		return fmt.Sprintf("Color(%v)", v.ColorV)
	case Position:
		return fmt.Sprintf("Position(%v)", v.PositionV)
	case Bundle:
		return fmt.Sprintf("Bundle(%+v)", v.BundleV)
	case Selection:
		return fmt.Sprintf("Selection(%d)", len(v.SelectV))
	default:
		return "Value(?)"
	}
}

// AsScalar coerces v to a float64, per spec.md §4.1: Scalar passes through,
// Bool and Trigger map true/false to 1/0, anything else falls back to def.
func AsScalar(v Value, def float64) float64 {
	switch v.Kind {
	case Scalar:
		return v.ScalarV
	case Bool:
		if v.BoolV {
			return 1
		}
		return 0
	case Trigger:
		if v.TriggerV {
			return 1
		}
		return 0
	default:
		return def
	}
}

// AsBool coerces v to a bool: Bool passes through, Scalar is true at >= 0.5,
// Trigger is true iff the edge fired this frame, anything else falls back.
func AsBool(v Value, def bool) bool {
	switch v.Kind {
	case Bool:
		return v.BoolV
	case Scalar:
		return v.ScalarV >= 0.5
	case Trigger:
		return v.TriggerV
	default:
		return def
	}
}

// AsColor coerces v to an RGB: Color passes through, a Bundle's color field
// is used if present (missing channels default to 0), anything else falls
// back to def.
func AsColor(v Value, def RGB) RGB {
	switch v.Kind {
	case Color:
		return v.ColorV
	case Bundle:
		if !v.BundleV.HasColor() {
			return def
		}
		var c RGB
		if v.BundleV.ColorR != nil {
			c.R = *v.BundleV.ColorR
		}
		if v.BundleV.ColorG != nil {
			c.G = *v.BundleV.ColorG
		}
		if v.BundleV.ColorB != nil {
			c.B = *v.BundleV.ColorB
		}
		return c
	default:
		return def
	}
}

// AsPosition coerces v to a PanTilt: Position passes through, a Bundle's
// pan/tilt fields are used if both are present, anything else falls back.
func AsPosition(v Value, def PanTilt) PanTilt {
	switch v.Kind {
	case Position:
		return v.PositionV
	case Bundle:
		if v.BundleV.Pan != nil && v.BundleV.Tilt != nil {
			return PanTilt{Pan: *v.BundleV.Pan, Tilt: *v.BundleV.Tilt}
		}
		return def
	default:
		return def
	}
}

// AsBundle coerces v to an AttributeBundle: Bundle passes through, Color,
// Position and Scalar (as intensity) are wrapped as a single-field bundle --
// this mirrors the compiler's {Color, Position, Scalar} -> Bundle edge
// compatibility rule (spec.md §4.4 rule 4).
func AsBundle(v Value, def AttributeBundle) AttributeBundle {
	switch v.Kind {
	case Bundle:
		return v.BundleV
	case Color:
		return AttributeBundle{}.SetColor(v.ColorV)
	case Position:
		p := v.PositionV
		pan, tilt := p.Pan, p.Tilt
		return AttributeBundle{Pan: &pan, Tilt: &tilt}
	case Scalar:
		s := v.ScalarV
		return AttributeBundle{Intensity: &s}
	default:
		return def
	}
}

// AsSelection coerces v to a Selection: Selection passes through, anything
// else falls back to def (typically the empty selection).
func AsSelection(v Value, def Selection) Selection {
	if v.Kind == Selection {
		return v.SelectV
	}
	return def
}
