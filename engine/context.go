package engine

import (
	"reflect"

	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/input"
	"github.com/lumenctl/lumen/registry"
	"github.com/lumenctl/lumen/value"
)

// evalContext is the per-node catalog.EvalContext implementation. One is
// created per node evaluation within a tick; all share the instance's
// outputs cache and state map, differing only in which node's state they
// address.
type evalContext struct {
	now, dt    float64
	inst       *instance
	nodeID     string
	outputs    map[string]map[string]value.Value
	reg        registry.EntityRegistry
	inputState *input.State
}

func (c *evalContext) Time() float64      { return c.now }
func (c *evalContext) DeltaTime() float64 { return c.dt }

func (c *evalContext) GetInput(nodeID, port string) (value.Value, bool) {
	edge, ok := c.inst.compiled.EdgeFor(nodeID, port)
	if !ok {
		return value.Value{}, false
	}
	producerOutputs, ok := c.outputs[edge.From.NodeID]
	if !ok {
		return value.Value{}, false
	}
	v, ok := producerOutputs[edge.From.Port]
	return v, ok
}

func (c *evalContext) GetFader(id string) float64 {
	if c.inputState == nil {
		return 0
	}
	return c.inputState.GetFader(id)
}

func (c *evalContext) GetButton(id string) (held, pressed, released bool) {
	if c.inputState == nil {
		return false, false, false
	}
	return c.inputState.GetButton(id)
}

func (c *evalContext) GetGroup(id string) ([]string, bool) {
	if c.reg == nil {
		return nil, false
	}
	g, ok := c.reg.GetGroup(id)
	if !ok {
		return nil, false
	}
	return g.FixtureIDs, true
}

func (c *evalContext) GetPreset(id string) (catalog.PresetAttributes, bool) {
	if c.reg == nil {
		return catalog.PresetAttributes{}, false
	}
	p, ok := c.reg.GetPreset(id)
	if !ok {
		return catalog.PresetAttributes{}, false
	}
	return catalog.PresetAttributes{
		Intensity: p.Attributes.Intensity,
		ColorR:    p.Attributes.ColorR,
		ColorG:    p.Attributes.ColorG,
		ColorB:    p.Attributes.ColorB,
		Pan:       p.Attributes.Pan,
		Tilt:      p.Attributes.Tilt,
		Zoom:      p.Attributes.Zoom,
	}, true
}

// GetState loads this node's persistent state into dst, a pointer to the
// same type previously passed to SetState. If there is no stored state yet,
// or dst does not match the stored type, dst is left at its zero value --
// the latter only happens if a node's state schema changes across a
// version, which is a programming error, not something to panic on.
func (c *evalContext) GetState(dst interface{}) {
	stored, ok := c.inst.state[c.nodeID]
	if !ok {
		return
	}
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() != reflect.Ptr {
		return
	}
	storedVal := reflect.ValueOf(stored)
	if storedVal.Type() != dstVal.Elem().Type() {
		return
	}
	dstVal.Elem().Set(storedVal)
}

// SetState stores this node's persistent state, replacing whatever was
// there.
func (c *evalContext) SetState(v interface{}) {
	c.inst.state[c.nodeID] = v
}

var _ catalog.EvalContext = (*evalContext)(nil)
