package main

import "github.com/lumenctl/lumen/registry"

// demoEntities seeds a MemRegistry with a self-contained scene matching
// spec.md §8 scenario 4/5 ("Red to group" / "Fader scaling"): one RGB
// fixture patched to universe 0, one group containing it, and a graph that
// selects the group, writes a red color, and scales it by a fader so
// `lumend --demo` has something to tick without an external CRUD service
// (SPEC_FULL.md §4 "A minimal in-memory EntityRegistry implementation").
func demoEntities() *registry.MemRegistry {
	reg := registry.NewMemRegistry()

	reg.PutFixtureModel(registry.FixtureModel{
		ID:    "par-rgb",
		Brand: "Generic",
		Model: "PAR RGB",
		Channels: map[string]int{
			registry.ChanDimmer: 1,
			registry.ChanRed:    2,
			registry.ChanGreen:  3,
			registry.ChanBlue:   4,
		},
	})

	reg.PutFixture(registry.Fixture{
		ID:           "fixture-1",
		Revision:     1,
		Name:         "Front Wash 1",
		ModelID:      "par-rgb",
		Universe:     0,
		StartChannel: 1,
	})

	reg.PutGroup(registry.Group{
		ID:         "group-front",
		Revision:   1,
		Name:       "Front Wash",
		FixtureIDs: []string{"fixture-1"},
	})

	reg.PutGraph(registry.Graph{
		ID:       "demo-graph",
		Revision: 1,
		Name:     "Demo: red wash scaled by master fader",
		Enabled:  true,
		Nodes: []registry.GraphNode{
			{ID: "sel", Type: "SelectGroup", Params: map[string]interface{}{"groupId": "group-front"}},
			{ID: "col", Type: "ColorConstant", Params: map[string]interface{}{"r": 1.0, "g": 0.0, "b": 0.0}},
			{ID: "fader", Type: "Fader", Params: map[string]interface{}{"faderId": "master"}},
			{ID: "scale", Type: "ScaleColor", Params: map[string]interface{}{}},
			{ID: "w", Type: "WriteAttributes", Params: map[string]interface{}{"priority": 0}},
		},
		Edges: []registry.GraphEdge{
			{ID: "e1", From: registry.Endpoint{NodeID: "col", Port: "color"}, To: registry.Endpoint{NodeID: "scale", Port: "color"}},
			{ID: "e2", From: registry.Endpoint{NodeID: "fader", Port: "value"}, To: registry.Endpoint{NodeID: "scale", Port: "scale"}},
			{ID: "e3", From: registry.Endpoint{NodeID: "sel", Port: "selection"}, To: registry.Endpoint{NodeID: "w", Port: "selection"}},
			{ID: "e4", From: registry.Endpoint{NodeID: "scale", Port: "result"}, To: registry.Endpoint{NodeID: "w", Port: "bundle"}},
		},
	})

	return reg
}
