package dag

import "testing"

func TestTopoSortSimpleChain(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort() error = %v", err)
	}
	index := map[string]int{}
	for i, id := range order {
		index[id] = i
	}
	if index["a"] >= index["b"] || index["b"] >= index["c"] {
		t.Errorf("expected a < b < c in order, got %v", order)
	}
}

func TestTopoSortTieBreakIsInsertionOrder(t *testing.T) {
	g := New()
	g.AddNode("z")
	g.AddNode("a")
	g.AddNode("m")
	// No edges: three independent nodes, order must follow insertion order.
	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort() error = %v", err)
	}
	want := []string{"z", "a", "m"}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("TopoSort() = %v, want %v", order, want)
		}
	}
}

func TestFindCycleDetectsSimpleCycle(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	c := g.FindCycle()
	if c == nil {
		t.Fatal("FindCycle() = nil, want a cycle")
	}
	seen := map[string]bool{}
	for _, id := range c.Nodes {
		seen[id] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("cycle %v does not name both a and b", c.Nodes)
	}
}

func TestFindCycleAcyclicReturnsNil(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	if c := g.FindCycle(); c != nil {
		t.Errorf("FindCycle() = %v, want nil", c)
	}
}

func TestTopoSortCycleReturnsError(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	if _, err := g.TopoSort(); err == nil {
		t.Error("TopoSort() error = nil, want error on cyclic graph")
	}
}
