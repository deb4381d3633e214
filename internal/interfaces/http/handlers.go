package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/cfdi"
	"github.com/garyjia/cfdi-extractor/internal/models"
	"github.com/garyjia/cfdi-extractor/internal/repository"
)

const maxDocumentSize = 10 << 20 // 10 MiB per CFDI document

// Handlers contains all HTTP request handlers
type Handlers struct {
	extractor *cfdi.Extractor
	documents *repository.DocumentRepository
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(extractor *cfdi.Extractor, documents *repository.DocumentRepository, logger *zap.Logger) *Handlers {
	return &Handlers{
		extractor: extractor,
		documents: documents,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Extract handles POST /api/extract. The request body is one raw CFDI XML
// document; the response is the normalized record or the typed failure.
func (h *Handlers) Extract(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "failed to read request body",
		})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "empty request body",
		})
		return
	}

	source := c.GetHeader("X-Source-Name")
	if source == "" {
		source = "http-upload"
	}

	record, err := h.extractor.ProcessBytes(source, data)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, cfdi.ErrMalformedXML) {
			status = http.StatusBadRequest
		}
		c.JSON(status, Response{
			Success: false,
			Error:   err.Error(),
			Kind:    cfdi.Classify(err),
		})
		return
	}

	if h.documents != nil {
		if recErr := h.documents.Create(models.NewDocumentRow(record)); recErr != nil {
			h.logger.Warn("Failed to record extraction outcome", zap.Error(recErr))
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}

// ListDocuments handles GET /api/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	if h.documents == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "history store not configured",
		})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "invalid limit parameter",
			})
			return
		}
		limit = parsed
	}

	rows, err := h.documents.ListRecent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to list documents",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    rows,
	})
}
