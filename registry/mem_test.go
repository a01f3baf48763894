package registry

import (
	"sync"
	"testing"
)

func TestMemRegistryPutGet(t *testing.T) {
	r := NewMemRegistry()
	r.PutFixture(Fixture{ID: "f1", Name: "par1", ModelID: "m1", Universe: 0, StartChannel: 1})

	f, ok := r.GetFixture("f1")
	if !ok || f.Name != "par1" {
		t.Fatalf("expected f1 to be found, got %+v, %v", f, ok)
	}

	if _, ok := r.GetFixture("missing"); ok {
		t.Fatal("expected missing fixture to not be found")
	}
}

func TestMemRegistryConcurrentReadsDuringWrite(t *testing.T) {
	r := NewMemRegistry()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			r.PutGroup(Group{ID: "g1", FixtureIDs: []string{"f1", "f2"}})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			r.GetGroup("g1") // must never panic or race
		}
	}()
	wg.Wait()
}

func TestFixtureFootprint(t *testing.T) {
	model := FixtureModel{Channels: map[string]int{ChanDimmer: 1, ChanRed: 2, ChanGreen: 3, ChanBlue: 4}}
	f := Fixture{StartChannel: 10}
	start, end := f.Footprint(model)
	if start != 10 || end != 13 {
		t.Errorf("Footprint() = (%d, %d), want (10, 13)", start, end)
	}
}
