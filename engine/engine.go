// Package engine implements the fixed-rate tick loop: per-instance node
// evaluation, WriteAttributes collection, cross-instance priority merge,
// and frame fan-out to subscribers (spec.md §4.6).
package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sanity-io/litter"
	"golang.org/x/time/rate"

	"github.com/lumenctl/lumen/catalog"
	"github.com/lumenctl/lumen/compiler"
	"github.com/lumenctl/lumen/input"
	"github.com/lumenctl/lumen/registry"
	"github.com/lumenctl/lumen/util/errwrap"
	"github.com/lumenctl/lumen/value"
)

// stopTimeout bounds how long Stop waits for an in-flight tick before
// giving up, so a wedged evaluator (one that somehow escapes
// safeEvaluate's recover) cannot block shutdown forever.
const stopTimeout = 5 * time.Second

// frameSubscriberQueueSize bounds each async subscriber's backlog; once
// full, the oldest queued frame is dropped rather than blocking the tick.
const frameSubscriberQueueSize = 4

// FrameOutput is the per-tick result of the cross-instance merge (spec.md
// §4.6 step 4).
type FrameOutput struct {
	FrameNumber        uint64
	MonotonicTimestamp time.Time
	Fixtures           map[string]value.AttributeBundle
}

// Stats is the snapshot returned by GetStats (spec.md §6).
type Stats struct {
	Running       bool
	FrameNumber   uint64
	TargetHz      float64
	LoadedGraphs  int
	EnabledGraphs int
}

// WriteOutputInfo is one graph instance's last-tick write records, for
// status reporting (spec.md §6 getWriteOutputs).
type WriteOutputInfo struct {
	GraphID string
	Writes  []WriteRecord
}

type subscriber struct {
	ch   chan FrameOutput
	done chan struct{}
}

// Engine owns the tick loop, every loaded graph instance, and the frame
// subscriber list. Callers wire in a registry.EntityRegistry and an
// *input.State; everything else is created by New.
type Engine struct {
	// Logf is the logging function used throughout the engine.
	Logf func(format string, v ...interface{})
	// Debug turns on per-tick litter dumps of FrameOutput.
	Debug bool

	// TickObserver, if set, is called once per tick with its wall-clock
	// evaluation duration in seconds (e.g. metrics.Metrics.ObserveTick).
	TickObserver func(seconds float64)
	// PanicObserver, if set, is called once per node-evaluator panic
	// safeEvaluate recovers from, naming the node's type.
	PanicObserver func(nodeType string)
	// CompileErrorObserver, if set, is called once per compiler.CompileError
	// code when LoadGraph fails to compile a graph.
	CompileErrorObserver func(code string)

	TargetHz float64
	Registry registry.EntityRegistry
	Input    *input.State

	mu          sync.Mutex
	instances   map[string]*instance // keyed by graphID
	loadCounter int
	running     bool
	frameNumber uint64
	startTime   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}

	subMu       sync.Mutex
	subscribers []*subscriber
	inlineSubs  []func(FrameOutput)

	panicLimiters map[string]*rate.Limiter
}

// New constructs an Engine. Call Start to begin ticking.
func New(targetHz float64, reg registry.EntityRegistry, in *input.State) *Engine {
	return &Engine{
		Logf:          func(format string, v ...interface{}) { fmt.Printf(format+"\n", v...) },
		TargetHz:      targetHz,
		Registry:      reg,
		Input:         in,
		instances:     map[string]*instance{},
		panicLimiters: map[string]*rate.Limiter{},
		startTime:     time.Now(),
	}
}

// Start transitions Stopped -> Running: it launches the periodic scheduler
// goroutine. Calling Start twice is a no-op.
func (obj *Engine) Start() {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.running {
		return
	}
	obj.running = true
	obj.startTime = time.Now()
	obj.frameNumber = 0
	obj.stopCh = make(chan struct{})
	obj.doneCh = make(chan struct{})
	go obj.loop(obj.stopCh, obj.doneCh)
}

// Stop transitions Running -> Stopped: it cancels the periodic timer and
// waits for any in-flight tick to complete before returning (spec.md §5
// "Cancellation & timeouts"). If the in-flight tick has not finished within
// stopTimeout, Stop gives up waiting and returns a wrapped timeout error
// instead of blocking shutdown forever.
func (obj *Engine) Stop() error {
	obj.mu.Lock()
	if !obj.running {
		obj.mu.Unlock()
		return nil
	}
	obj.running = false
	stopCh := obj.stopCh
	doneCh := obj.doneCh
	obj.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		return nil
	case <-time.After(stopTimeout):
		return errwrap.Wrapf(fmt.Errorf("tick did not complete"), "engine: stop timed out after %s", stopTimeout)
	}
}

// loop is the cooperative-single-threaded scheduler: one tick does not
// start until the previous returns, and an overrun tick does not trigger a
// catch-up burst -- the next deadline is simply resynced to now (spec.md
// §4.6).
func (obj *Engine) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	period := time.Duration(float64(time.Second) / obj.TargetHz)
	next := time.Now()
	lastTickStart := time.Now()

	for {
		now := time.Now()
		var wait time.Duration
		if next.After(now) {
			wait = next.Sub(now)
		}
		timer := time.NewTimer(wait)
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		tickStart := time.Now()
		dt := tickStart.Sub(lastTickStart).Seconds()
		lastTickStart = tickStart

		obj.tick(tickStart, dt)

		next = next.Add(period)
		if next.Before(time.Now()) {
			next = time.Now()
		}
	}
}

// Tick runs one full scheduler iteration directly, bypassing the periodic
// timer -- useful for tests that need deterministic control over deltaTime
// and tick sequencing. The running scheduler loop never calls this; it
// calls tick with its own wall-clock tickStart.
func (obj *Engine) Tick(dt float64) FrameOutput {
	return obj.tick(time.Now(), dt)
}

// tick runs one full scheduler iteration: per-instance evaluation,
// cross-instance merge, frame construction, endFrame, and fan-out.
func (obj *Engine) tick(tickStart time.Time, dt float64) FrameOutput {
	evalStart := time.Now()
	if obj.TickObserver != nil {
		defer func() { obj.TickObserver(time.Since(evalStart).Seconds()) }()
	}

	if dt < 0 {
		dt = 0
	}
	now := tickStart.Sub(obj.startTime).Seconds()

	obj.mu.Lock()
	instances := make([]*instance, 0, len(obj.instances))
	for _, inst := range obj.instances {
		instances = append(instances, inst)
	}
	obj.mu.Unlock()

	sort.Slice(instances, func(i, j int) bool { return instances[i].loadOrder < instances[j].loadOrder })

	var allWrites []WriteRecord
	for _, inst := range instances {
		if !inst.enabled {
			continue
		}
		allWrites = append(allWrites, obj.evaluateInstance(inst, now, dt)...)
	}

	fixtures := mergeWrites(allWrites)

	obj.mu.Lock()
	obj.frameNumber++
	frame := FrameOutput{
		FrameNumber:        obj.frameNumber,
		MonotonicTimestamp: tickStart,
		Fixtures:           fixtures,
	}
	obj.mu.Unlock()

	if obj.Input != nil {
		obj.Input.EndFrame()
	}

	if obj.Debug {
		obj.Logf("tick %d: %s", frame.FrameNumber, litter.Sdump(frame))
	}

	obj.dispatch(frame)
	return frame
}

// mergeWrites implements spec.md §4.6 step 2-3: sort ascending by priority
// (ties by load order then node id), then fold each record's present bundle
// fields into the per-fixture output, later writes overwriting earlier
// ones field by field.
func mergeWrites(writes []WriteRecord) map[string]value.AttributeBundle {
	sort.SliceStable(writes, func(i, j int) bool {
		if writes[i].Priority != writes[j].Priority {
			return writes[i].Priority < writes[j].Priority
		}
		if writes[i].LoadOrder != writes[j].LoadOrder {
			return writes[i].LoadOrder < writes[j].LoadOrder
		}
		return writes[i].NodeID < writes[j].NodeID
	})

	fixtures := map[string]value.AttributeBundle{}
	for _, w := range writes {
		for _, fid := range w.Selection.IDs() {
			fixtures[fid] = fixtures[fid].Merge(w.Bundle)
		}
	}
	return fixtures
}

// evaluateInstance evaluates every node in topological order, then harvests
// WriteAttributes records (spec.md §4.6 per-instance tick, steps 1-3).
func (obj *Engine) evaluateInstance(inst *instance, now, dt float64) []WriteRecord {
	outputs := make(map[string]map[string]value.Value, len(inst.compiled.EvaluationOrder))

	for _, nodeID := range inst.compiled.EvaluationOrder {
		gn := inst.compiled.Nodes[nodeID]
		ctx := &evalContext{now: now, dt: dt, inst: inst, nodeID: nodeID, outputs: outputs, reg: obj.Registry, inputState: obj.Input}

		if _, ok := catalog.Lookup(gn.Type); !ok {
			if !inst.loggedMissingTypes[gn.Type] {
				inst.loggedMissingTypes[gn.Type] = true
				obj.Logf("engine: instance %s: no evaluator registered for node type %q", inst.id, gn.Type)
			}
			outputs[nodeID] = map[string]value.Value{}
			continue
		}

		outputs[nodeID] = obj.safeEvaluate(inst, gn, ctx)
	}

	var writes []WriteRecord
	for _, nodeID := range inst.compiled.EvaluationOrder {
		gn := inst.compiled.Nodes[nodeID]
		if gn.Type != "WriteAttributes" {
			continue
		}
		ctx := &evalContext{now: now, dt: dt, inst: inst, nodeID: nodeID, outputs: outputs, reg: obj.Registry, inputState: obj.Input}
		selVal, _ := ctx.GetInput(nodeID, "selection")
		bundleVal, _ := ctx.GetInput(nodeID, "bundle")
		sel := value.AsSelection(selVal, value.Selection{})
		if len(sel) == 0 {
			continue
		}
		bundle := value.AsBundle(bundleVal, value.AttributeBundle{})
		writes = append(writes, WriteRecord{
			NodeID:          nodeID,
			GraphInstanceID: inst.id,
			LoadOrder:       inst.loadOrder,
			Selection:       sel,
			Bundle:          bundle,
			Priority:        priorityParam(gn),
		})
	}

	inst.lastWrites = writes
	return writes
}

// compileErrorChain folds every compiler.CompileError into a single error
// chain via errwrap.Append, each one first annotated with its node/code
// context via errwrap.Wrapf, so one Logf call reports the full set instead
// of one line per error.
func compileErrorChain(errs []compiler.CompileError) error {
	var chain error
	for _, e := range errs {
		base := fmt.Errorf("%s", e.Message)
		chain = errwrap.Append(chain, errwrap.Wrapf(base, "%s on node %s", e.Code, e.NodeID))
	}
	return chain
}

func priorityParam(gn registry.GraphNode) int {
	v, ok := gn.Params["priority"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// safeEvaluate calls the node's evaluator, recovering from a panic and
// treating its outputs as empty for this tick -- a broken node degrades,
// it never halts the engine (spec.md §4.6 step 2, §7 "runtime degradation").
func (obj *Engine) safeEvaluate(inst *instance, gn registry.GraphNode, ctx *evalContext) (out map[string]value.Value) {
	defer func() {
		if r := recover(); r != nil {
			if obj.limiterFor(inst.id, gn.ID).Allow() {
				obj.Logf("engine: instance %s: node %s (%s) panicked: %v", inst.id, gn.ID, gn.Type, r)
			}
			if obj.PanicObserver != nil {
				obj.PanicObserver(gn.Type)
			}
			out = map[string]value.Value{}
		}
	}()
	return catalog.Evaluate(gn.Type, catalog.EvalNode{ID: gn.ID, Params: gn.Params}, ctx)
}

func (obj *Engine) limiterFor(instanceID, nodeID string) *rate.Limiter {
	key := instanceID + "/" + nodeID
	obj.mu.Lock()
	defer obj.mu.Unlock()
	l, ok := obj.panicLimiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Second), 1)
		obj.panicLimiters[key] = l
	}
	return l
}

// dispatch fans a frame out to every subscriber. Inline subscribers (the
// Art-Net bridge) run synchronously on the tick thread; async subscribers
// get a non-blocking, drop-oldest-on-full send to their bounded channel
// (spec.md §9 "Observer fan-out").
func (obj *Engine) dispatch(frame FrameOutput) {
	obj.subMu.Lock()
	inline := append([]func(FrameOutput){}, obj.inlineSubs...)
	subs := append([]*subscriber{}, obj.subscribers...)
	obj.subMu.Unlock()

	for _, fn := range inline {
		fn(frame)
	}

	for _, s := range subs {
		select {
		case s.ch <- frame:
		default:
			select {
			case <-s.ch: // drop oldest
			default:
			}
			select {
			case s.ch <- frame:
			default:
			}
		}
	}
}

// OnFrame registers an asynchronous frame listener. It runs on its own
// goroutine reading from a bounded, drop-oldest queue, so a slow listener
// cannot stall the tick thread. The returned function unsubscribes it.
func (obj *Engine) OnFrame(listener func(FrameOutput)) (unsubscribe func()) {
	s := &subscriber{ch: make(chan FrameOutput, frameSubscriberQueueSize), done: make(chan struct{})}
	obj.subMu.Lock()
	obj.subscribers = append(obj.subscribers, s)
	obj.subMu.Unlock()

	go func() {
		for {
			select {
			case frame := <-s.ch:
				listener(frame)
			case <-s.done:
				return
			}
		}
	}()

	return func() {
		obj.subMu.Lock()
		for i, x := range obj.subscribers {
			if x == s {
				obj.subscribers = append(obj.subscribers[:i], obj.subscribers[i+1:]...)
				break
			}
		}
		obj.subMu.Unlock()
		close(s.done)
	}
}

// OnFrameInline registers a synchronous, tick-thread frame listener. Only
// the Art-Net bridge should use this -- spec.md §9 requires it never be
// dropped, so it runs inline rather than through a bounded queue.
func (obj *Engine) OnFrameInline(listener func(FrameOutput)) {
	obj.subMu.Lock()
	defer obj.subMu.Unlock()
	obj.inlineSubs = append(obj.inlineSubs, listener)
}

// LoadGraph compiles g and, if it compiles, stores a fresh instance with
// empty per-node state (spec.md §4.6 "loadGraph"). Returns false and
// creates no instance if compilation fails, after logging every compile
// error folded into one chain via errwrap.
func (obj *Engine) LoadGraph(g registry.Graph) (compiler.CompileResult, bool) {
	result := compiler.Compile(g)
	if !result.OK {
		obj.Logf("engine: graph %s failed to compile: %s", g.ID, errwrap.String(compileErrorChain(result.Errors)))
		if obj.CompileErrorObserver != nil {
			for _, e := range result.Errors {
				obj.CompileErrorObserver(string(e.Code))
			}
		}
		return result, false
	}

	obj.mu.Lock()
	defer obj.mu.Unlock()
	obj.loadCounter++
	obj.instances[g.ID] = newInstance(uuid.NewString(), g.ID, result.Compiled, obj.loadCounter)
	obj.instances[g.ID].enabled = g.Enabled
	return result, true
}

// UnloadGraph drops an instance and its per-node state.
func (obj *Engine) UnloadGraph(graphID string) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	delete(obj.instances, graphID)
}

// SetGraphEnabled toggles evaluation for a loaded graph; state is
// preserved either way.
func (obj *Engine) SetGraphEnabled(graphID string, enabled bool) bool {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	inst, ok := obj.instances[graphID]
	if !ok {
		return false
	}
	inst.enabled = enabled
	return true
}

// UnloadAllGraphs drops every loaded instance.
func (obj *Engine) UnloadAllGraphs() {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	obj.instances = map[string]*instance{}
}

// ReloadAllGraphs re-fetches every graph from the registry and reloads it,
// discarding all prior per-node state (used on show switch).
func (obj *Engine) ReloadAllGraphs() {
	if obj.Registry == nil {
		return
	}
	graphs := obj.Registry.ListAllGraphs()
	obj.UnloadAllGraphs()
	for _, g := range graphs {
		obj.LoadGraph(g)
	}
}

// GetStats returns a snapshot of the engine's current state (spec.md §6).
func (obj *Engine) GetStats() Stats {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	enabled := 0
	for _, inst := range obj.instances {
		if inst.enabled {
			enabled++
		}
	}
	return Stats{
		Running:       obj.running,
		FrameNumber:   obj.frameNumber,
		TargetHz:      obj.TargetHz,
		LoadedGraphs:  len(obj.instances),
		EnabledGraphs: enabled,
	}
}

// GetWriteOutputs returns the last tick's resolved write records for a
// loaded graph, for status reporting.
func (obj *Engine) GetWriteOutputs(graphID string) (WriteOutputInfo, bool) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	inst, ok := obj.instances[graphID]
	if !ok {
		return WriteOutputInfo{}, false
	}
	return WriteOutputInfo{GraphID: graphID, Writes: inst.lastWrites}, true
}
