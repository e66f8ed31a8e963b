package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"gonuclear/app"
	"gonuclear/domain/core"
	apperrors "gonuclear/internal/errors"
	"gonuclear/internal/report"
	"gonuclear/models"

	"github.com/gin-gonic/gin"
)

const exportLimit = 1000

type batchRequest struct {
	Targets     []app.Target `json:"targets"`
	MaxParallel int64        `json:"max_parallel,omitempty"`
}

type batchItem struct {
	Target  app.Target      `json:"target"`
	Verdict *models.Verdict `json:"verdict,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleClassify(c *gin.Context) {
	var target app.Target
	if err := c.ShouldBindJSON(&target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	verdict, err := s.classify.Classify(c.Request.Context(), target)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleClassifyBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Targets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targets must not be empty"})
		return
	}
	if req.MaxParallel <= 0 {
		req.MaxParallel = 4
	}

	results := s.classify.ClassifyBatch(c.Request.Context(), req.Targets, req.MaxParallel)
	items := make([]batchItem, len(results))
	for i, r := range results {
		items[i] = batchItem{Target: r.Target, Verdict: r.Verdict}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (s *Server) handleListVerdicts(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	if object := c.Query("object"); object != "" {
		verdicts, err := s.verdicts.FindByObject(c.Request.Context(), object)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"verdicts": verdicts})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	verdicts, err := s.verdicts.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verdicts": verdicts})
}

func (s *Server) handleGetVerdict(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	verdict, err := s.verdicts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleVerdictReport(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	verdict, err := s.verdicts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(verdict))
}

// handleVerdictFigure re-fetches the object's detections and renders the
// requested diagnostic figure for a stored verdict.
func (s *Server) handleVerdictFigure(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	verdict, err := s.verdicts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	ras, decs, err := s.source.Detections(c.Request.Context(), verdict.ZTFName)
	if err != nil {
		s.writeError(c, err)
		return
	}

	kind := report.FigureKind(c.DefaultQuery("kind", string(report.FigureDetections)))
	var buf bytes.Buffer
	if err := report.WriteFigure(&buf, kind, verdict, ras, decs); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleExportVerdicts(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	verdicts, err := s.verdicts.List(c.Request.Context(), exportLimit, 0)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, verdicts); err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="verdicts.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) requireStore(c *gin.Context) bool {
	if s.verdicts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verdict storage is not configured"})
		return false
	}
	return true
}

// writeError maps domain and adapter errors onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	var status int
	switch {
	case core.IsValidationError(err):
		status = http.StatusBadRequest
	case core.IsDegenerateError(err):
		status = http.StatusUnprocessableEntity
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	default:
		switch apperrors.GetCode(err) {
		case apperrors.CodeConfigInvalid:
			status = http.StatusServiceUnavailable
		case apperrors.CodeExternalService:
			status = http.StatusBadGateway
		default:
			status = http.StatusInternalServerError
		}
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": fmt.Sprintf("%v", err)})
}
