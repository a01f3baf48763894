// Package metrics exposes the engine's and Art-Net bridge's runtime counters
// as Prometheus metrics, the same shape of instrumentation the teacher ships
// alongside its engine (purpleidea-mgmt/prometheus/prometheus.go), adapted
// from "managed resources" gauges to tick/frame/DMX counters. This is
// observability scaffolding, not part of the core dataflow subsystem
// (SPEC_FULL.md §4 "Metrics surface").
package metrics

import (
	"net/http"
	"strconv"

	"github.com/iancoleman/strcase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultListen mirrors the teacher's DefaultPrometheusListen convention:
// bind the metrics server to loopback by default.
const DefaultListen = "127.0.0.1:9234"

// Metrics holds every Prometheus collector the engine and bridge update.
// Run Init before Start.
type Metrics struct {
	Listen string

	tickDuration     prometheus.Histogram
	framesTotal      prometheus.Counter
	loadedGraphs     prometheus.Gauge
	enabledGraphs    prometheus.Gauge
	compileErrors    *prometheus.CounterVec
	evaluatorPanics  *prometheus.CounterVec
	dmxPacketsSent   *prometheus.CounterVec
	dmxSendFailures  *prometheus.CounterVec
	server           *http.Server
}

// Init constructs and registers every collector. Calling it twice on the
// same registry would panic (prometheus.MustRegister does not tolerate
// duplicate registration), matching the teacher's Init contract.
func (obj *Metrics) Init() error {
	if obj.Listen == "" {
		obj.Listen = DefaultListen
	}

	obj.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lumen_tick_duration_seconds",
		Help:    "Wall-clock duration of one engine tick (evaluation + merge + dispatch).",
		Buckets: prometheus.DefBuckets,
	})
	prometheus.MustRegister(obj.tickDuration)

	obj.framesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lumen_frames_total",
		Help: "Total number of frames produced by the engine since it last started.",
	})
	prometheus.MustRegister(obj.framesTotal)

	obj.loadedGraphs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lumen_loaded_graphs",
		Help: "Number of graph instances currently loaded into the engine.",
	})
	prometheus.MustRegister(obj.loadedGraphs)

	obj.enabledGraphs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lumen_enabled_graphs",
		Help: "Number of loaded graph instances currently enabled for evaluation.",
	})
	prometheus.MustRegister(obj.enabledGraphs)

	obj.compileErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_compile_errors_total",
		Help: "Total compile errors emitted, by error code.",
	}, []string{"code"})
	prometheus.MustRegister(obj.compileErrors)

	obj.evaluatorPanics = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_evaluator_panics_total",
		Help: "Total node-evaluator panics recovered by the engine, by node type.",
	}, []string{"node_type"})
	prometheus.MustRegister(obj.evaluatorPanics)

	obj.dmxPacketsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_dmx_packets_sent_total",
		Help: "Total ArtDmx packets sent, by universe.",
	}, []string{"universe"})
	prometheus.MustRegister(obj.dmxPacketsSent)

	obj.dmxSendFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_dmx_send_failures_total",
		Help: "Total ArtDmx send failures, by universe.",
	}, []string{"universe"})
	prometheus.MustRegister(obj.dmxSendFailures)

	return nil
}

// Start runs the /metrics HTTP server in a goroutine, same pattern as the
// teacher's Prometheus.Start.
func (obj *Metrics) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	obj.server = &http.Server{Addr: obj.Listen, Handler: mux}
	go obj.server.ListenAndServe()
	return nil
}

// Stop shuts down the metrics HTTP server.
func (obj *Metrics) Stop() error {
	if obj.server == nil {
		return nil
	}
	return obj.server.Close()
}

// ObserveTick records one tick's wall-clock duration.
func (obj *Metrics) ObserveTick(seconds float64) {
	obj.tickDuration.Observe(seconds)
}

// ObserveFrame increments the frame counter and refreshes the loaded/enabled
// graph gauges from the engine's latest stats snapshot.
func (obj *Metrics) ObserveFrame(loadedGraphs, enabledGraphs int) {
	obj.framesTotal.Inc()
	obj.loadedGraphs.Set(float64(loadedGraphs))
	obj.enabledGraphs.Set(float64(enabledGraphs))
}

// ObserveCompileError increments the compile-error counter for code.
func (obj *Metrics) ObserveCompileError(code string) {
	obj.compileErrors.With(prometheus.Labels{"code": code}).Inc()
}

// ObserveEvaluatorPanic increments the evaluator-panic counter for nodeType.
// The node type is run through strcase so ad-hoc node type strings can never
// smuggle an invalid Prometheus label character through.
func (obj *Metrics) ObserveEvaluatorPanic(nodeType string) {
	obj.evaluatorPanics.With(prometheus.Labels{"node_type": strcase.ToSnake(nodeType)}).Inc()
}

// ObserveDMXSend records the outcome of one ArtDmx send for a universe.
func (obj *Metrics) ObserveDMXSend(universeID int, err error) {
	label := strcase.ToSnake(universeLabel(universeID))
	if err != nil {
		obj.dmxSendFailures.With(prometheus.Labels{"universe": label}).Inc()
		return
	}
	obj.dmxPacketsSent.With(prometheus.Labels{"universe": label}).Inc()
}

func universeLabel(universeID int) string {
	return "universe_" + strconv.Itoa(universeID)
}
