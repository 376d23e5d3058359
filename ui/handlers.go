package ui

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gocatalog/adapters/excel"
	"gocatalog/domain/sheet"
	"gocatalog/internal/errors"
	"gocatalog/internal/usage"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type overrideRequest struct {
	TemplateHeader string `json:"template_header" binding:"required"`
	RawHeader      string `json:"raw_header"`
}

type enrichRequest struct {
	Marketplace string `json:"marketplace"`
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.catalog.Len(),
		"provider": s.provider,
	})
}

// handleCreateSession decodes the template and raw uploads concurrently.
func (s *Server) handleCreateSession(c *gin.Context) {
	templateFile, err := c.FormFile("template")
	if err != nil {
		s.respondError(c, errors.InvalidInput("multipart field \"template\" is required"))
		return
	}
	rawFile, err := c.FormFile("raw")
	if err != nil {
		s.respondError(c, errors.InvalidInput("multipart field \"raw\" is required"))
		return
	}

	var template, raw *sheet.Data
	var g errgroup.Group
	g.Go(func() error {
		d, err := decodeUpload(templateFile)
		template = d
		return err
	})
	g.Go(func() error {
		d, err := decodeUpload(rawFile)
		raw = d
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondError(c, err)
		return
	}

	view, err := s.catalog.Create(template, raw)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func decodeUpload(fh *multipart.FileHeader) (*sheet.Data, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open upload %s", fh.Filename)
	}
	defer f.Close()
	return excel.Decode(fh.Filename, f)
}

func (s *Server) handleGetSession(c *gin.Context) {
	view, err := s.catalog.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.catalog.Delete(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleOverrideMapping(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	view, err := s.catalog.Override(c.Param("id"), req.TemplateHeader, req.RawHeader)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleDetect(c *gin.Context) {
	view, err := s.catalog.Detect(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handlePreview(c *gin.Context) {
	preview, err := s.catalog.Preview(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (s *Server) handleCoverage(c *gin.Context) {
	coverage, err := s.catalog.Coverage(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coverage)
}

func (s *Server) handleExport(c *gin.Context) {
	format := excel.Format(strings.ToLower(c.DefaultQuery("format", string(excel.FormatXLSX))))
	content, err := s.catalog.Export(c.Param("id"), format)
	if err != nil {
		s.respondError(c, err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == excel.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "catalog."+string(format)))
	c.Data(http.StatusOK, contentType, content)
}

func (s *Server) handleEnrich(c *gin.Context) {
	var req enrichRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, errors.InvalidInput(err.Error()))
			return
		}
	}
	result, err := s.catalog.Enrich(c.Request.Context(), c.Param("id"), req.Marketplace)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	result, err := s.catalog.Chat(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleUsage(c *gin.Context) {
	window := usage.DefaultWindow
	if raw := c.Query("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			s.respondError(c, errors.InvalidInput(fmt.Sprintf("invalid window %q", raw)))
			return
		}
		window = d
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		s.respondError(c, errors.InvalidInput("limit must be an integer"))
		return
	}

	report, err := s.usage.Report(c.Request.Context(), window, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// respondError maps an error to its status. Server-side failures are opaque.
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "request failed"})
		return
	}

	body := gin.H{"error": err.Error()}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		body = gin.H{"error": appErr.Message, "code": appErr.Code}
	}
	c.AbortWithStatusJSON(status, body)
}
