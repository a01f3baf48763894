package registry

import "sync/atomic"

// snapshot is an immutable view of all entities. MemRegistry swaps the
// pointer to a new snapshot on every mutation rather than locking individual
// maps, so tick-thread reads never block behind a writer (spec.md §5
// "EntityRegistry ... publish-new-version semantics").
type snapshot struct {
	fixtures      map[string]Fixture
	fixtureModels map[string]FixtureModel
	groups        map[string]Group
	presets       map[string]Preset
	graphs        map[string]Graph
}

func emptySnapshot() *snapshot {
	return &snapshot{
		fixtures:      map[string]Fixture{},
		fixtureModels: map[string]FixtureModel{},
		groups:        map[string]Group{},
		presets:       map[string]Preset{},
		graphs:        map[string]Graph{},
	}
}

func (s *snapshot) copy() *snapshot {
	n := &snapshot{
		fixtures:      make(map[string]Fixture, len(s.fixtures)),
		fixtureModels: make(map[string]FixtureModel, len(s.fixtureModels)),
		groups:        make(map[string]Group, len(s.groups)),
		presets:       make(map[string]Preset, len(s.presets)),
		graphs:        make(map[string]Graph, len(s.graphs)),
	}
	for k, v := range s.fixtures {
		n.fixtures[k] = v
	}
	for k, v := range s.fixtureModels {
		n.fixtureModels[k] = v
	}
	for k, v := range s.groups {
		n.groups[k] = v
	}
	for k, v := range s.presets {
		n.presets[k] = v
	}
	for k, v := range s.graphs {
		n.graphs[k] = v
	}
	return n
}

// MemRegistry is an in-memory EntityRegistry, used by the engine's own test
// suite and by `cmd/lumend --demo` to run a self-contained graph without an
// external CRUD service fronting it. It is not a substitute for the
// persistence layer spec.md §1 keeps external -- it holds no durability
// guarantee across process restarts.
type MemRegistry struct {
	state atomic.Pointer[snapshot]
}

// NewMemRegistry returns an empty, ready-to-use registry.
func NewMemRegistry() *MemRegistry {
	r := &MemRegistry{}
	r.state.Store(emptySnapshot())
	return r
}

func (r *MemRegistry) GetFixture(id string) (Fixture, bool) {
	f, ok := r.state.Load().fixtures[id]
	return f, ok
}

func (r *MemRegistry) GetFixtureModel(id string) (FixtureModel, bool) {
	m, ok := r.state.Load().fixtureModels[id]
	return m, ok
}

func (r *MemRegistry) GetGroup(id string) (Group, bool) {
	g, ok := r.state.Load().groups[id]
	return g, ok
}

func (r *MemRegistry) GetPreset(id string) (Preset, bool) {
	p, ok := r.state.Load().presets[id]
	return p, ok
}

func (r *MemRegistry) ListAllGraphs() []Graph {
	s := r.state.Load()
	out := make([]Graph, 0, len(s.graphs))
	for _, g := range s.graphs {
		out = append(out, g)
	}
	return out
}

// PutFixture inserts or replaces a fixture. Revision is the caller's
// responsibility -- optimistic-concurrency conflict checking lives in the
// external CRUD layer (spec.md §7), not here.
func (r *MemRegistry) PutFixture(f Fixture) {
	for {
		old := r.state.Load()
		next := old.copy()
		next.fixtures[f.ID] = f
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

// PutFixtureModel inserts or replaces a fixture model.
func (r *MemRegistry) PutFixtureModel(m FixtureModel) {
	for {
		old := r.state.Load()
		next := old.copy()
		next.fixtureModels[m.ID] = m
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

// PutGroup inserts or replaces a group.
func (r *MemRegistry) PutGroup(g Group) {
	for {
		old := r.state.Load()
		next := old.copy()
		next.groups[g.ID] = g
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

// PutPreset inserts or replaces a preset.
func (r *MemRegistry) PutPreset(p Preset) {
	for {
		old := r.state.Load()
		next := old.copy()
		next.presets[p.ID] = p
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

// PutGraph inserts or replaces a graph definition.
func (r *MemRegistry) PutGraph(g Graph) {
	for {
		old := r.state.Load()
		next := old.copy()
		next.graphs[g.ID] = g
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

// DeleteGraph removes a graph definition, if present.
func (r *MemRegistry) DeleteGraph(id string) {
	for {
		old := r.state.Load()
		if _, ok := old.graphs[id]; !ok {
			return
		}
		next := old.copy()
		delete(next.graphs, id)
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

var _ EntityRegistry = (*MemRegistry)(nil)
