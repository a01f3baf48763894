// Package statusapi exposes a read-only debug/status HTTP surface over the
// engine's own introspection methods (GetStats, GetWriteOutputs). It is
// explicitly not the CRUD entity API or WebSocket control channel of
// spec.md §6 -- those remain external collaborators -- this only serves
// what the core already computes, for operators and dashboards (SPEC_FULL.md
// §3 "statusapi"). Grounded on the teacher's gin usage in
// purpleidea-mgmt/engine/resources/http_server_ui.go (router.Use with a
// custom logger + gin.Recovery, gin.H responses).
package statusapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenctl/lumen/engine"
)

// StatusEngine is the subset of *engine.Engine the status surface reads.
type StatusEngine interface {
	GetStats() engine.Stats
	GetWriteOutputs(graphID string) (engine.WriteOutputInfo, bool)
}

// Server owns the gin router and an *http.Server wrapping it. Logf receives
// one line per request, matching the teacher's ginLogger helper.
type Server struct {
	Logf   func(format string, v ...interface{})
	Listen string

	Engine StatusEngine

	router *gin.Engine
	server *http.Server
}

// New builds a Server ready to Start. listen defaults to "127.0.0.1:8080" if
// empty.
func New(eng StatusEngine, listen string, logf func(format string, v ...interface{})) *Server {
	if listen == "" {
		listen = "127.0.0.1:8080"
	}
	s := &Server{Logf: logf, Listen: listen, Engine: eng}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(s.ginLogger(), gin.Recovery())

	router.GET("/healthz", s.handleHealthz)
	router.GET("/stats", s.handleStats)
	router.GET("/graphs/:id/writes", s.handleGraphWrites)

	s.router = router
	return s
}

// ginLogger adapts gin's request lifecycle to Logf, mirroring the teacher's
// HTTPServerUIRes.ginLogger.
func (s *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if s.Logf != nil {
			s.Logf("statusapi: %s %s %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		}
	}
}

// Start runs the HTTP server in a background goroutine.
func (s *Server) Start() error {
	s.server = &http.Server{Addr: s.Listen, Handler: s.router}
	go s.server.ListenAndServe()
	return nil
}

// Stop shuts down the status HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleStats(c *gin.Context) {
	stats := s.Engine.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"running":       stats.Running,
		"frameNumber":   stats.FrameNumber,
		"targetHz":      stats.TargetHz,
		"loadedGraphs":  stats.LoadedGraphs,
		"enabledGraphs": stats.EnabledGraphs,
	})
}

func (s *Server) handleGraphWrites(c *gin.Context) {
	id := c.Param("id")
	info, ok := s.Engine.GetWriteOutputs(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "graph not loaded", "graphId": id})
		return
	}

	writes := make([]gin.H, 0, len(info.Writes))
	for _, w := range info.Writes {
		writes = append(writes, gin.H{
			"nodeId":    w.NodeID,
			"selection": w.Selection.IDs(),
			"priority":  w.Priority,
			"bundle":    w.Bundle,
		})
	}
	c.JSON(http.StatusOK, gin.H{"graphId": id, "writes": writes})
}
