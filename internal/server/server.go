// Package server is the HTTP façade over the engine. It binds JSON, calls
// the core and maps failure kinds to status codes; everything else (UI,
// export, dashboards) lives outside this repository.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/store"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/validation"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/workflow"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server exposes the engine over HTTP.
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *validation.Pipeline
	engine   *workflow.Engine
	store    *store.Store
	logger   *zap.Logger
}

// NewServer creates the API server over an already-wired engine.
func NewServer(config *Config, engine *workflow.Engine, st *store.Store, logger *zap.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:   config,
		router:   router,
		pipeline: validation.NewPipeline(),
		engine:   engine,
		store:    st,
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/validate", s.handleValidate)
		v1.POST("/documents/process", s.handleProcess)
		v1.POST("/documents/batch", s.handleBatch)
		v1.GET("/documents/:code/history", s.handleHistory)
		v1.GET("/ledger/:period", s.handleLedger)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	var doc model.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid document payload", Details: err.Error()})
		return
	}

	normalized, violations := s.pipeline.Validate(doc, doc.Type())
	c.JSON(http.StatusOK, ValidationResponse{
		Valid:      !model.HasBlocking(violations),
		Document:   normalized,
		Violations: violations,
	})
}

func (s *Server) handleProcess(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid process payload", Details: err.Error()})
		return
	}
	if req.Direction == "" {
		req.Direction = model.DirectionEmission
	}

	out, err := s.engine.Run(c.Request.Context(), workflow.Submission{
		Document:          req.Document,
		Direction:         req.Direction,
		Credential:        req.Credential,
		ContingencyReason: req.ContingencyReason,
	})
	if err != nil {
		s.logger.Error("workflow run aborted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(statusFor(out), out)
}

func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid batch payload", Details: err.Error()})
		return
	}

	subs := make([]workflow.Submission, len(req.Documents))
	for i, d := range req.Documents {
		direction := d.Direction
		if direction == "" {
			direction = model.DirectionEmission
		}
		subs[i] = workflow.Submission{
			Document:          d.Document,
			Direction:         direction,
			Credential:        d.Credential,
			ContingencyReason: d.ContingencyReason,
		}
	}

	result, err := s.engine.IngestBatch(c.Request.Context(), subs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "history store not configured"})
		return
	}
	recs, err := s.store.Outcomes(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleLedger(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "ledger store not configured"})
		return
	}
	l, err := s.store.Ledger(c.Request.Context(), c.Param("period"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, l)
}

// statusFor maps a terminal outcome onto an HTTP status: completed runs
// are 200, validation failures 422, authority rejections 409, transport
// exhaustion 502.
func statusFor(out *workflow.Outcome) int {
	if out.Status == workflow.StatusCompleted {
		return http.StatusOK
	}
	if wf := out.Failure; wf != nil {
		switch wf.Kind {
		case model.FailureStructural, model.FailureBusinessRule:
			return http.StatusUnprocessableEntity
		case model.FailureSigning:
			return http.StatusBadGateway
		case model.FailureRejection:
			return http.StatusConflict
		case model.FailureCommunication:
			return http.StatusBadGateway
		}
	}
	return http.StatusUnprocessableEntity
}
