// Command lumend runs the lighting dataflow core standalone: the tick
// engine, the Art-Net bridge, a Prometheus metrics surface, and a read-only
// status HTTP API. It does not implement the CRUD/WebSocket layers of
// spec.md §6 -- in normal deployment those run as separate services wired
// to this process's EntityRegistry and InputState; `--demo` substitutes a
// self-contained in-memory registry so the core can be exercised without
// them (SPEC_FULL.md §4 "A minimal in-memory EntityRegistry
// implementation"). Flag/config shape follows the teacher's
// cli/run.go RunArgs pattern (SPEC_FULL.md §2.3).
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/lumenctl/lumen/artnet"
	"github.com/lumenctl/lumen/engine"
	"github.com/lumenctl/lumen/input"
	"github.com/lumenctl/lumen/metrics"
	_ "github.com/lumenctl/lumen/nodes" // node evaluators self-register via init()
	"github.com/lumenctl/lumen/registry"
	"github.com/lumenctl/lumen/statusapi"
)

// args is the CLI parsing structure, named the way the teacher names its
// RunArgs (field + `arg:"--flag,env:VAR"` tags, `default:` tags).
type args struct {
	TickHz           float64 `arg:"--tick-hz,env:LUMEN_TICK_HZ" default:"60" help:"engine tick rate in Hz"`
	ArtnetBroadcast  string  `arg:"--artnet-broadcast,env:LUMEN_ARTNET_BROADCAST" default:"2.255.255.255" help:"Art-Net UDP broadcast address"`
	ArtnetPort       int     `arg:"--artnet-port,env:LUMEN_ARTNET_PORT" default:"6454" help:"Art-Net UDP destination port"`
	StatusListen     string  `arg:"--status-listen,env:LUMEN_STATUS_LISTEN" default:"127.0.0.1:8080" help:"status HTTP API listen address"`
	MetricsListen    string  `arg:"--metrics-listen,env:LUMEN_METRICS_LISTEN" default:"127.0.0.1:9234" help:"Prometheus metrics listen address"`
	Demo             bool    `arg:"--demo" help:"run with a built-in in-memory registry and demo graph instead of an external entity source"`
	Debug            bool    `arg:"--debug" help:"enable verbose per-tick litter dumps"`
}

func (args) Version() string {
	return "lumend (lumen lighting dataflow engine)"
}

func main() {
	var a args
	arg.MustParse(&a)

	logf := func(format string, v ...interface{}) { log.Printf(format, v...) }

	if !a.Demo {
		logf("lumend: no external registry configured; pass --demo to run the built-in example, or wire an EntityRegistry via the library API")
		os.Exit(1)
	}

	reg := demoEntities()
	in := input.New()

	m := &metrics.Metrics{Listen: a.MetricsListen}
	if err := m.Init(); err != nil {
		log.Fatalf("lumend: metrics init: %v", err)
	}
	if err := m.Start(); err != nil {
		log.Fatalf("lumend: metrics start: %v", err)
	}
	defer m.Stop()

	eng := engine.New(a.TickHz, reg, in)
	eng.Logf = logf
	eng.Debug = a.Debug
	eng.TickObserver = m.ObserveTick
	eng.PanicObserver = m.ObserveEvaluatorPanic
	eng.CompileErrorObserver = m.ObserveCompileError
	eng.OnFrame(func(engine.FrameOutput) {
		stats := eng.GetStats()
		m.ObserveFrame(stats.LoadedGraphs, stats.EnabledGraphs)
	})

	bridge, err := artnet.New(reg, a.ArtnetBroadcast, a.ArtnetPort, logf)
	if err != nil {
		log.Fatalf("lumend: artnet bridge init: %v", err)
	}
	bridge.SendObserver = m.ObserveDMXSend
	eng.OnFrameInline(bridge.OnFrame)

	status := statusapi.New(eng, a.StatusListen, logf)
	if err := status.Start(); err != nil {
		log.Fatalf("lumend: status api start: %v", err)
	}
	defer status.Stop()

	loadDemoGraphs(eng, reg)

	eng.Start()
	logf("lumend: engine running at %.1f Hz, status on %s, metrics on %s", a.TickHz, a.StatusListen, a.MetricsListen)

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logf("lumend: sdnotify ready failed: %v", err)
	} else if ok {
		logf("lumend: notified systemd READY=1")
	}

	waitForSignal()

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logf("lumend: sdnotify stopping failed: %v", err)
	} else if ok {
		logf("lumend: notified systemd STOPPING=1")
	}

	if err := eng.Stop(); err != nil {
		logf("lumend: engine stop: %v", err)
	}
	if err := bridge.Close(); err != nil {
		logf("lumend: artnet bridge close: %v", err)
	}
}

// loadDemoGraphs loads every graph the demo registry knows about. A compile
// failure does not abort startup (spec.md §4.6 "loadGraph of a graph that
// fails to compile: returns false; no instance is created") -- LoadGraph
// itself logs the failure, so there is nothing more to do here.
func loadDemoGraphs(eng *engine.Engine, reg *registry.MemRegistry) {
	for _, g := range reg.ListAllGraphs() {
		eng.LoadGraph(g)
	}
}

// waitForSignal blocks until SIGINT or SIGTERM, matching the teacher's
// main.go waitForSignal helper.
func waitForSignal() {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	sig := <-signals
	if sig == os.Interrupt {
		log.Println("lumend: interrupted by ^C")
	} else {
		log.Println("lumend: interrupted by signal")
	}
}
