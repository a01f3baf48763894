// Package compiler validates a registry.Graph against the node catalog and
// produces a CompiledGraph ready for the engine, or a CompileResult
// reporting every discoverable error in one pass.
package compiler

import (
	"sort"

	"github.com/leonelquinteros/gotext"

	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/dag"
	"github.com/lumenctl/lumen/registry"
	"github.com/lumenctl/lumen/value"
)

// ErrorCode is the closed set of compile error codes (spec.md §6).
type ErrorCode string

const (
	UnknownNodeType   ErrorCode = "UNKNOWN_NODE_TYPE"
	InvalidParam      ErrorCode = "INVALID_PARAM"
	TypeMismatch      ErrorCode = "TYPE_MISMATCH"
	MissingConnection ErrorCode = "MISSING_CONNECTION"
	CycleDetected     ErrorCode = "CYCLE_DETECTED"
)

// CompileError names one problem found during compilation.
type CompileError struct {
	NodeID  string
	Port    *string
	Message string
	Code    ErrorCode
}

// Dependencies is the set of external ids a graph references by param,
// deduplicated, used by the control-channel layer to decide which inputs a
// loaded graph needs delivered to it.
type Dependencies struct {
	FaderIDs   []string
	ButtonIDs  []string
	GroupIDs   []string
	FixtureIDs []string
	PresetIDs  []string
}

// CompileResult is the outcome of Compile: either OK with a usable
// CompiledGraph, or not OK with the full list of errors found.
type CompileResult struct {
	OK           bool
	Errors       []CompileError
	Dependencies Dependencies
	Compiled     *CompiledGraph
}

// CompiledGraph is what the engine loads: the node set, edge map, and the
// order evaluators must run in to observe only already-produced outputs.
type CompiledGraph struct {
	GraphID         string
	Nodes           map[string]registry.GraphNode
	EvaluationOrder []string
	// edgesByInput maps a "nodeId:port" input endpoint to the single edge
	// driving it. At-most-one-driver is enforced at compile time, so this
	// is safe to key by the destination alone.
	edgesByInput map[string]registry.GraphEdge
}

// EdgeFor returns the edge driving (nodeID, port), if any.
func (c *CompiledGraph) EdgeFor(nodeID, port string) (registry.GraphEdge, bool) {
	e, ok := c.edgesByInput[inputKey(nodeID, port)]
	return e, ok
}

func inputKey(nodeID, port string) string { return nodeID + ":" + port }

// requiredInputs is the required-input policy table (spec.md §4.4 rule 6).
// Inputs not listed here are optional; when unconnected, the node's
// evaluator substitutes its own default value for them.
var requiredInputs = map[string][]string{
	"WriteAttributes": {"selection", "bundle"},
	"Add":              {"a", "b"},
	"Multiply":         {"a", "b"},
	"MixColor":         {"a", "b", "mix"},
	"ScaleColor":       {"color"},
	"ScalePosition":    {"position"},
	"ScaleBundle":      {"bundle"},
}

// alwaysRequiredParams names params that are required whenever a node
// declares them in its catalog entry, regardless of whether the catalog
// entry carries a default (spec.md §4.4 rule 2).
var alwaysRequiredParams = map[string]bool{
	"faderId":   true,
	"buttonId":  true,
	"groupId":   true,
	"fixtureId": true,
	"presetId":  true,
}

// Compile validates g against the node catalog and returns either a usable
// CompiledGraph or the full list of errors found. It never consults the
// entity registry -- whether a referenced fixture or group actually exists
// is a runtime concern, not a compile-time one (spec.md §4.4, closing note).
func Compile(g registry.Graph) CompileResult {
	var errs []CompileError

	nodesByID := make(map[string]registry.GraphNode, len(g.Nodes))
	for _, n := range g.Nodes {
		nodesByID[n.ID] = n
	}

	// Rule 1: UNKNOWN_NODE_TYPE. Nodes failing this are excluded from every
	// later check.
	knownNodes := make(map[string]registry.GraphNode, len(g.Nodes))
	defs := make(map[string]catalog.NodeDefinition, len(g.Nodes))
	for _, n := range g.Nodes {
		def, ok := catalog.Lookup(n.Type)
		if !ok {
			errs = append(errs, CompileError{
				NodeID: n.ID,
				Code:   UnknownNodeType,
				Message: gotext.Get("node %s has unknown type %q", n.ID, n.Type),
			})
			continue
		}
		knownNodes[n.ID] = n
		defs[n.ID] = def
	}

	// Rule 2: INVALID_PARAM for missing/mistyped/out-of-range params.
	for id, n := range knownNodes {
		errs = append(errs, checkParams(id, n, defs[id])...)
	}

	// Rule 3: INVALID_PARAM for edges naming a nonexistent port.
	var portErrs []CompileError
	validEdges := make([]registry.GraphEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		fromDef, fromOK := defs[e.From.NodeID]
		toDef, toOK := defs[e.To.NodeID]
		if !fromOK || !toOK {
			continue // endpoint node already reported as UNKNOWN_NODE_TYPE
		}
		_, fromPortOK := fromDef.Outputs[e.From.Port]
		_, toPortOK := toDef.Inputs[e.To.Port]
		if !fromPortOK {
			port := e.From.Port
			portErrs = append(portErrs, CompileError{
				NodeID: e.From.NodeID, Port: &port, Code: InvalidParam,
				Message: gotext.Get("edge %s references nonexistent output port %q", e.ID, port),
			})
			continue
		}
		if !toPortOK {
			port := e.To.Port
			portErrs = append(portErrs, CompileError{
				NodeID: e.To.NodeID, Port: &port, Code: InvalidParam,
				Message: gotext.Get("edge %s references nonexistent input port %q", e.ID, port),
			})
			continue
		}
		validEdges = append(validEdges, e)
	}
	errs = append(errs, portErrs...)

	// Rule 4: TYPE_MISMATCH per edge.
	for _, e := range validEdges {
		fromType := defs[e.From.NodeID].Outputs[e.From.Port].Type
		toType := defs[e.To.NodeID].Inputs[e.To.Port].Type
		if !compatible(fromType, toType) {
			port := e.To.Port
			errs = append(errs, CompileError{
				NodeID: e.To.NodeID, Port: &port, Code: TypeMismatch,
				Message: gotext.Get("edge %s: %s is not compatible with %s", e.ID, fromType, toType),
			})
		}
	}

	// Rule 5: duplicate driver -- at most one edge per (nodeId, port) input.
	byInput := map[string][]registry.GraphEdge{}
	for _, e := range validEdges {
		key := inputKey(e.To.NodeID, e.To.Port)
		byInput[key] = append(byInput[key], e)
	}
	edgesByInput := make(map[string]registry.GraphEdge, len(byInput))
	for key, dupes := range byInput {
		if len(dupes) > 1 {
			for _, e := range dupes {
				port := e.To.Port
				errs = append(errs, CompileError{
					NodeID: e.To.NodeID, Port: &port, Code: InvalidParam,
					Message: gotext.Get("input %s.%s has more than one driving edge", e.To.NodeID, port),
				})
			}
			continue
		}
		edgesByInput[key] = dupes[0]
	}

	// Rule 6: MISSING_CONNECTION for required inputs left unconnected.
	for id, n := range knownNodes {
		for _, port := range requiredInputs[n.Type] {
			if _, ok := edgesByInput[inputKey(id, port)]; ok {
				continue
			}
			p := port
			errs = append(errs, CompileError{
				NodeID: id, Port: &p, Code: MissingConnection,
				Message: gotext.Get("required input %s.%s is not connected", id, port),
			})
		}
	}

	// Build the dag over known nodes and valid-driver edges for cycle
	// detection and topological sort, regardless of earlier errors --
	// reporting is best-effort/all-at-once, per spec.md §4.4. Nodes are
	// added in g.Nodes source order, not knownNodes map order (which Go
	// randomizes per run), so FindCycle/TopoSort's insertion-order
	// tie-breaking makes evaluationOrder deterministic across compiles of
	// the same graph (spec.md §4.4 step 8, §8 determinism).
	graph := dag.New()
	for _, n := range g.Nodes {
		if _, ok := knownNodes[n.ID]; ok {
			graph.AddNode(n.ID)
		}
	}
	for _, e := range edgesByInput {
		graph.AddEdge(e.From.NodeID, e.To.NodeID)
	}

	// Rule 7: CYCLE_DETECTED.
	if cycle := graph.FindCycle(); cycle != nil {
		for _, id := range cycle.Nodes {
			errs = append(errs, CompileError{
				NodeID: id, Code: CycleDetected,
				Message: gotext.Get("node %s is part of a dependency cycle", id),
			})
		}
	}

	if len(errs) > 0 {
		return CompileResult{OK: false, Errors: errs, Dependencies: extractDependencies(knownNodes)}
	}

	// Rule 8: topological sort.
	order, err := graph.TopoSort()
	if err != nil {
		// Unreachable in practice: FindCycle already returned nil above.
		return CompileResult{OK: false, Errors: []CompileError{{
			Code:    CycleDetected,
			Message: gotext.Get("topological sort failed: %s", err),
		}}}
	}

	compiled := &CompiledGraph{
		GraphID:         g.ID,
		Nodes:           knownNodes,
		EvaluationOrder: order,
		edgesByInput:    edgesByInput,
	}

	return CompileResult{
		OK:           true,
		Dependencies: extractDependencies(knownNodes),
		Compiled:     compiled,
	}
}

// compatible implements the edge type-compatibility rules of spec.md §4.4
// rule 4.
func compatible(from, to value.PortType) bool {
	if from == to {
		return true
	}
	if from == value.Trigger && to == value.Bool {
		return true
	}
	if to == value.Bundle && (from == value.Color || from == value.Position || from == value.Scalar) {
		return true
	}
	return false
}

func checkParams(nodeID string, n registry.GraphNode, def catalog.NodeDefinition) []CompileError {
	var errs []CompileError
	for name, paramDef := range def.Params {
		raw, present := n.Params[name]
		required := alwaysRequiredParams[name] || !paramDef.HasDefault()
		if !present {
			if required {
				errs = append(errs, CompileError{
					NodeID: nodeID, Code: InvalidParam,
					Message: gotext.Get("node %s is missing required param %q", nodeID, name),
				})
			}
			continue
		}
		if err := checkParamType(nodeID, name, raw, paramDef); err != nil {
			errs = append(errs, *err)
			continue
		}
		if err := checkParamRange(nodeID, name, raw, paramDef); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

func checkParamType(nodeID, name string, raw interface{}, def catalog.ParamDefinition) *CompileError {
	ok := false
	switch def.Type {
	case catalog.ParamNumber:
		switch raw.(type) {
		case float64, int:
			ok = true
		}
	case catalog.ParamString:
		_, ok = raw.(string)
	case catalog.ParamBool:
		_, ok = raw.(bool)
	case catalog.ParamStringList:
		switch raw.(type) {
		case []string, []interface{}:
			ok = true
		}
	}
	if ok {
		return nil
	}
	return &CompileError{
		NodeID: nodeID, Code: InvalidParam,
		Message: gotext.Get("node %s: param %q has the wrong type", nodeID, name),
	}
}

func checkParamRange(nodeID, name string, raw interface{}, def catalog.ParamDefinition) *CompileError {
	if def.Min == nil && def.Max == nil {
		return nil
	}
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	default:
		return nil // not numeric, already flagged by checkParamType
	}
	if def.Min != nil && v < *def.Min {
		return &CompileError{NodeID: nodeID, Code: InvalidParam,
			Message: gotext.Get("node %s: param %q is below minimum %v", nodeID, name, *def.Min)}
	}
	if def.Max != nil && v > *def.Max {
		return &CompileError{NodeID: nodeID, Code: InvalidParam,
			Message: gotext.Get("node %s: param %q is above maximum %v", nodeID, name, *def.Max)}
	}
	return nil
}

func extractDependencies(nodes map[string]registry.GraphNode) Dependencies {
	faders := map[string]bool{}
	buttons := map[string]bool{}
	groups := map[string]bool{}
	fixtures := map[string]bool{}
	presets := map[string]bool{}

	for _, n := range nodes {
		if id, ok := n.Params["faderId"].(string); ok && id != "" {
			faders[id] = true
		}
		if id, ok := n.Params["buttonId"].(string); ok && id != "" {
			buttons[id] = true
		}
		if id, ok := n.Params["presetId"].(string); ok && id != "" {
			presets[id] = true
		}
		collectIDs(n.Params, "groupId", "groupIds", groups)
		collectIDs(n.Params, "fixtureId", "fixtureIds", fixtures)
	}

	return Dependencies{
		FaderIDs:   setToSlice(faders),
		ButtonIDs:  setToSlice(buttons),
		GroupIDs:   setToSlice(groups),
		FixtureIDs: setToSlice(fixtures),
		PresetIDs:  setToSlice(presets),
	}
}

func collectIDs(params map[string]interface{}, singular, plural string, into map[string]bool) {
	if id, ok := params[singular].(string); ok && id != "" {
		into[id] = true
	}
	switch ids := params[plural].(type) {
	case []string:
		for _, id := range ids {
			into[id] = true
		}
	case []interface{}:
		for _, raw := range ids {
			if id, ok := raw.(string); ok {
				into[id] = true
			}
		}
	}
}

// setToSlice returns a sorted slice of s's keys, so Dependencies is
// deterministic across runs despite Go's randomized map iteration order --
// callers (the control-channel layer, tests) can compare it directly.
func setToSlice(s map[string]bool) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
