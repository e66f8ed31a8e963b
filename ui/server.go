// Package ui exposes the classifier over HTTP: classification, stored
// verdicts, rendered reports and diagnostic figures.
package ui

import (
	"gonuclear/app"
	"gonuclear/internal"
	"gonuclear/ports"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP front end.
type Server struct {
	router   *gin.Engine
	classify *app.ClassifyService
	verdicts ports.VerdictRepository
	source   ports.DetectionSource
	log      *internal.Logger
}

// NewServer wires the routes. verdicts may be nil when the server runs
// without a database; the verdict endpoints then return 503.
func NewServer(classify *app.ClassifyService, verdicts ports.VerdictRepository,
	source ports.DetectionSource) *Server {
	s := &Server{
		router:   gin.Default(),
		classify: classify,
		verdicts: verdicts,
		source:   source,
		log:      internal.DefaultLogger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/api/classify", s.handleClassify)
	s.router.POST("/api/classify/batch", s.handleClassifyBatch)

	s.router.GET("/api/verdicts", s.handleListVerdicts)
	s.router.GET("/api/verdicts/export", s.handleExportVerdicts)
	s.router.GET("/api/verdicts/:id", s.handleGetVerdict)
	s.router.GET("/api/verdicts/:id/report", s.handleVerdictReport)
	s.router.GET("/api/verdicts/:id/figure", s.handleVerdictFigure)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.log.Info("listening on %s", addr)
	return s.router.Run(addr)
}
