// Package catalog holds the static node-type catalog: for each node type, a
// NodeDefinition describing its ports and params, plus the evaluator
// function that implements it (spec.md §3 "NodeDefinition", §4.5). The
// registration pattern is adapted from the teacher's resource catalog
// (purpleidea-mgmt/engine/resources.go: RegisterResource/NewResource), with
// the node's evaluator function stored alongside its definition instead of
// a constructor, since nodes are pure functions of (node, ctx), not
// long-lived objects.
package catalog

import (
	"fmt"

	"github.com/lumenctl/lumen/value"
)

// ParamKind is the closed set of param value shapes.
type ParamKind int

const (
	ParamNumber ParamKind = iota
	ParamString
	ParamBool
	ParamStringList
)

// ParamDefinition describes one param a node type accepts.
type ParamDefinition struct {
	Type    ParamKind
	Default interface{} // nil if there is no default (param is required)
	Min     *float64
	Max     *float64
}

// HasDefault reports whether the param has a declared default value.
func (p ParamDefinition) HasDefault() bool { return p.Default != nil }

// PortDefinition describes one input or output port a node type exposes.
type PortDefinition struct {
	Type    value.PortType
	Default *value.Value // nil if the port declares no default; the compiler's required-input table, not this field, decides whether an input must be connected
	Min     *float64
	Max     *float64
}

// Evaluator is the pure (or single-node-state-carrying) function that
// implements a node type: it reads params/inputs via ctx and returns the
// node's output port values (spec.md §4.5). A sink node (WriteAttributes)
// returns an empty map -- its effect is harvested by the engine through
// ctx, not through a return value.
type Evaluator func(node EvalNode, ctx EvalContext) map[string]value.Value

// EvalNode is the subset of a registry.GraphNode an evaluator needs: its id
// and its resolved params. Node evaluators never see the raw
// registry.GraphNode type, which keeps catalog/nodes independent of the
// registry package's wire shape.
type EvalNode struct {
	ID     string
	Params map[string]interface{}
}

// EvalContext is the per-tick, per-instance context passed to every
// evaluator (spec.md §4.5).
type EvalContext interface {
	Time() float64
	DeltaTime() float64
	GetInput(nodeID, port string) (value.Value, bool)
	GetFader(id string) float64
	GetButton(id string) (held, pressed, released bool)
	GetGroup(id string) (fixtureIDs []string, ok bool)
	GetPreset(id string) (PresetAttributes, bool)
	// GetState loads this node's persistent state into dst (a pointer),
	// leaving it at its zero value if no state exists yet.
	GetState(dst interface{})
	// SetState stores this node's persistent state, replacing whatever
	// was there before.
	SetState(v interface{})
}

// PresetAttributes mirrors registry.PartialAttributes so the catalog
// package (and therefore node evaluators) does not need to import the
// registry package directly; the engine adapts between the two at its
// EvalContext implementation.
type PresetAttributes struct {
	Intensity *float64
	ColorR    *float64
	ColorG    *float64
	ColorB    *float64
	Pan       *float64
	Tilt      *float64
	Zoom      *float64
}

// NodeDefinition is the static catalog entry for one node type.
type NodeDefinition struct {
	Label    string
	Category string
	Inputs   map[string]PortDefinition
	Outputs  map[string]PortDefinition
	Params   map[string]ParamDefinition
}

// entry bundles a NodeDefinition with its evaluator.
type entry struct {
	def  NodeDefinition
	eval Evaluator
}

var registered = map[string]entry{}

// Register adds a node type to the catalog. It panics on an empty type name
// or a duplicate registration, matching the teacher's
// RegisterResource/RegisterResource panics (purpleidea-mgmt/engine/resources.go)
// -- both are programming errors caught at package init time, never at
// runtime against user data.
func Register(nodeType string, def NodeDefinition, eval Evaluator) {
	if nodeType == "" {
		panic("catalog: cannot register a node type with an empty name")
	}
	if _, exists := registered[nodeType]; exists {
		panic(fmt.Sprintf("catalog: node type %q is already registered", nodeType))
	}
	registered[nodeType] = entry{def: def, eval: eval}
}

// Lookup returns the NodeDefinition for a node type, and whether it exists.
func Lookup(nodeType string) (NodeDefinition, bool) {
	e, ok := registered[nodeType]
	return e.def, ok
}

// Evaluate dispatches to the registered evaluator for a node type. Callers
// must check Lookup first; Evaluate panics on an unknown type since the
// compiler guarantees every node in a CompiledGraph has a known type
// (spec.md §4.4 rule 1, UNKNOWN_NODE_TYPE).
func Evaluate(nodeType string, node EvalNode, ctx EvalContext) map[string]value.Value {
	e, ok := registered[nodeType]
	if !ok {
		panic(fmt.Sprintf("catalog: no evaluator registered for node type %q", nodeType))
	}
	return e.eval(node, ctx)
}

// RegisteredTypes returns every registered node type name.
func RegisteredTypes() []string {
	out := make([]string, 0, len(registered))
	for k := range registered {
		out = append(out, k)
	}
	return out
}
