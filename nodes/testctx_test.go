package nodes

import (
	"reflect"

	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/value"
)

// fakeCtx is a minimal catalog.EvalContext test double: inputs and
// fader/button/group/preset lookups are supplied by the test, state is kept
// in a plain map keyed by node id (mirroring how engine/context.go's real
// evalContext addresses engine/instance.go's per-instance state map, just
// without the surrounding tick/instance machinery).
type fakeCtx struct {
	now, dt float64
	inputs  map[string]map[string]value.Value
	faders  map[string]float64
	buttons map[string]fakeButton
	groups  map[string][]string
	presets map[string]catalog.PresetAttributes
	state   map[string]interface{}
}

type fakeButton struct {
	held, pressed, released bool
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{
		inputs:  map[string]map[string]value.Value{},
		faders:  map[string]float64{},
		buttons: map[string]fakeButton{},
		groups:  map[string][]string{},
		presets: map[string]catalog.PresetAttributes{},
		state:   map[string]interface{}{},
	}
}

func (c *fakeCtx) setInput(nodeID, port string, v value.Value) {
	m, ok := c.inputs[nodeID]
	if !ok {
		m = map[string]value.Value{}
		c.inputs[nodeID] = m
	}
	m[port] = v
}

func (c *fakeCtx) Time() float64      { return c.now }
func (c *fakeCtx) DeltaTime() float64 { return c.dt }

func (c *fakeCtx) GetInput(nodeID, port string) (value.Value, bool) {
	m, ok := c.inputs[nodeID]
	if !ok {
		return value.Value{}, false
	}
	v, ok := m[port]
	return v, ok
}

func (c *fakeCtx) GetFader(id string) float64 { return c.faders[id] }

func (c *fakeCtx) GetButton(id string) (held, pressed, released bool) {
	b := c.buttons[id]
	return b.held, b.pressed, b.released
}

func (c *fakeCtx) GetGroup(id string) ([]string, bool) {
	fixtures, ok := c.groups[id]
	return fixtures, ok
}

func (c *fakeCtx) GetPreset(id string) (catalog.PresetAttributes, bool) {
	p, ok := c.presets[id]
	return p, ok
}

// GetState/SetState key state by a fixed node id per fakeCtx instance,
// since tests each construct one fakeCtx per node under test (no sharing
// across distinct nodeIDs the way the engine's instance-wide state map
// does) -- a single "node" key is enough to exercise persistence.
const fakeStateKey = "node"

func (c *fakeCtx) GetState(dst interface{}) {
	stored, ok := c.state[fakeStateKey]
	if !ok {
		return
	}
	dstVal := reflect.ValueOf(dst)
	storedVal := reflect.ValueOf(stored)
	if dstVal.Kind() != reflect.Ptr || storedVal.Type() != dstVal.Elem().Type() {
		return
	}
	dstVal.Elem().Set(storedVal)
}

func (c *fakeCtx) SetState(v interface{}) {
	c.state[fakeStateKey] = v
}

var _ catalog.EvalContext = (*fakeCtx)(nil)
