package engine

import (
	"github.com/lumenctl/lumen/compiler"
	"github.com/lumenctl/lumen/value"
)

// instance is one loaded, compiled graph along with its per-node persistent
// state. Disabling an instance preserves state; unloading destroys it
// (spec.md §3 "Lifecycles").
type instance struct {
	id        string // google/uuid instance id, distinct from the graph id
	graphID   string
	compiled  *compiler.CompiledGraph
	enabled   bool
	loadOrder int // used as the stable tie-break in the cross-instance merge

	// state is keyed by nodeId; values are whatever the node's evaluator
	// last passed to SetState (spec.md §3: keyed by (instanceId, nodeId),
	// instanceId is implicit here since state belongs to one instance).
	state map[string]interface{}

	loggedMissingTypes map[string]bool
}

func newInstance(id, graphID string, compiled *compiler.CompiledGraph, loadOrder int) *instance {
	return &instance{
		id:                 id,
		graphID:            graphID,
		compiled:           compiled,
		enabled:            true,
		loadOrder:          loadOrder,
		state:              map[string]interface{}{},
		loggedMissingTypes: map[string]bool{},
	}
}

// WriteRecord is one resolved WriteAttributes sink's output for a tick
// (spec.md §4.6 step 3).
type WriteRecord struct {
	NodeID          string
	GraphInstanceID string
	LoadOrder       int
	Selection       value.Selection
	Bundle          value.AttributeBundle
	Priority        int
}
