package nodes

import (
	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

func paramFloat(node catalog.EvalNode, name string, def float64) float64 {
	if v, ok := node.Params[name]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

func paramString(node catalog.EvalNode, name, def string) string {
	if v, ok := node.Params[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func paramBool(node catalog.EvalNode, name string, def bool) bool {
	if v, ok := node.Params[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func paramStringSlice(node catalog.EvalNode, name string) []string {
	v, ok := node.Params[name]
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// input reads a connected input, falling back to def if the port is
// unconnected (spec.md §4.5 "Input resolution").
func input(ctx catalog.EvalContext, nodeID, port string, def value.Value) value.Value {
	if v, ok := ctx.GetInput(nodeID, port); ok {
		return v
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampColor(c value.RGB) value.RGB {
	return value.RGB{R: clamp(c.R, 0, 1), G: clamp(c.G, 0, 1), B: clamp(c.B, 0, 1)}
}

func clampPosition(p value.PanTilt) value.PanTilt {
	return value.PanTilt{Pan: clamp(p.Pan, -1, 1), Tilt: clamp(p.Tilt, -1, 1)}
}
