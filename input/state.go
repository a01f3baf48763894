// Package input holds InputState, the live fader/button state external
// transports (HTTP, WebSocket) write into and the tick thread reads from
// each frame (spec.md §4.6, §5 "Shared resources"). It is the only mutable
// state crossing the tick-thread boundary; everything else on the tick
// thread is owned exclusively by the engine.
package input

import "sync"

// buttonState tracks one button's held flag plus the two one-frame edge
// flags that are cleared at EndFrame.
type buttonState struct {
	held             bool
	pressedThisTick  bool
	releasedThisTick bool
}

// State is safe for concurrent use: setters are called from arbitrary
// external-transport goroutines, GetFader/GetButton are called from the
// tick thread only. A single mutex is sufficient since neither side ever
// blocks for long -- this is a state snapshot, not an I/O boundary.
type State struct {
	mu      sync.Mutex
	faders  map[string]float64
	buttons map[string]*buttonState
}

// New returns an empty, ready-to-use input state.
func New() *State {
	return &State{
		faders:  map[string]float64{},
		buttons: map[string]*buttonState{},
	}
}

// SetFader sets a fader's value, clamped to 0..1.
func (s *State) SetFader(id string, v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faders[id] = v
}

// GetFader returns a fader's current value, 0 if never set.
func (s *State) GetFader(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faders[id]
}

func (s *State) buttonLocked(id string) *buttonState {
	b, ok := s.buttons[id]
	if !ok {
		b = &buttonState{}
		s.buttons[id] = b
	}
	return b
}

// SetButtonDown sets a button's held state. A false->true transition marks
// pressedThisTick; a true->false transition marks releasedThisTick. Both
// edge flags persist (logically OR'd) until EndFrame clears them, so
// multiple setter calls between two ticks still yield exactly one pulse.
func (s *State) SetButtonDown(id string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.buttonLocked(id)
	if down && !b.held {
		b.pressedThisTick = true
	}
	if !down && b.held {
		b.releasedThisTick = true
	}
	b.held = down
}

// ButtonPress synthesizes a single-tick press pulse for momentary "trigger"
// controls that are never actually held down (e.g. a UI button sent as a
// single WebSocket message): pressedThisTick fires, held is left/forced
// false, and any pending releasedThisTick is cleared (spec.md §4.3
// "buttonPress").
func (s *State) ButtonPress(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.buttonLocked(id)
	b.pressedThisTick = true
	b.held = false
	b.releasedThisTick = false
}

// GetButton returns (held, pressedThisFrame, releasedThisFrame) for id.
func (s *State) GetButton(id string) (held, pressed, released bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buttons[id]
	if !ok {
		return false, false, false
	}
	return b.held, b.pressedThisTick, b.releasedThisTick
}

// EndFrame clears every button's one-frame edge flags. Called once per tick
// after the cross-instance merge, per spec.md §4.6 step 5.
func (s *State) EndFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.buttons {
		b.pressedThisTick = false
		b.releasedThisTick = false
	}
}
