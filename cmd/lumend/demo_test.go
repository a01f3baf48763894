package main

import (
	"testing"

	"github.com/lumenctl/lumen/compiler"
	_ "github.com/lumenctl/lumen/nodes" // registers the node catalog
)

func TestDemoGraphCompiles(t *testing.T) {
	reg := demoEntities()
	graphs := reg.ListAllGraphs()
	if len(graphs) != 1 {
		t.Fatalf("expected 1 demo graph, got %d", len(graphs))
	}

	result := compiler.Compile(graphs[0])
	if !result.OK {
		t.Fatalf("demo graph failed to compile: %+v", result.Errors)
	}
	if len(result.Compiled.EvaluationOrder) != len(graphs[0].Nodes) {
		t.Errorf("evaluationOrder length = %d, want %d", len(result.Compiled.EvaluationOrder), len(graphs[0].Nodes))
	}
}

func TestDemoFixtureAndGroupWireUp(t *testing.T) {
	reg := demoEntities()
	fixture, ok := reg.GetFixture("fixture-1")
	if !ok {
		t.Fatal("expected fixture-1 to exist")
	}
	group, ok := reg.GetGroup("group-front")
	if !ok {
		t.Fatal("expected group-front to exist")
	}
	if len(group.FixtureIDs) != 1 || group.FixtureIDs[0] != fixture.ID {
		t.Errorf("group-front.FixtureIDs = %v, want [%s]", group.FixtureIDs, fixture.ID)
	}
	model, ok := reg.GetFixtureModel(fixture.ModelID)
	if !ok {
		t.Fatal("expected fixture model to exist")
	}
	if _, ok := model.Channels["red"]; !ok {
		t.Error("expected fixture model to declare a red channel")
	}
}
