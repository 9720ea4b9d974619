package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invosplit/internal/domain"
	"invosplit/internal/export"
	"invosplit/internal/service"
)

// BatchHandler handles bundle upload and processing endpoints.
type BatchHandler struct {
	batchService service.BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService service.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

// Upload handles POST /api/v1/batches
func (h *BatchHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	batch, err := h.batchService.Upload(c.Request.Context(), service.UploadBatchInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, batch)
}

// List handles GET /api/v1/batches
func (h *BatchHandler) List(c *gin.Context) {
	offset, limit := pagination(c)
	batches, total, err := h.batchService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, batches, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/batches/:id
func (h *BatchHandler) GetByID(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}
	batch, err := h.batchService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, batch)
}

// Process handles POST /api/v1/batches/:id/process
func (h *BatchHandler) Process(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}
	batch, err := h.batchService.StartProcessing(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, batch)
}

// validateSplitRequest carries optional reviewer-edited boundaries.
type validateSplitRequest struct {
	Spans []domain.CandidateSpan `json:"spans"`
}

// ValidateSplit handles POST /api/v1/batches/:id/validate-split
func (h *BatchHandler) ValidateSplit(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}

	var req validateSplitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_BODY", "malformed span edits")
			return
		}
	}

	batch, err := h.batchService.ValidateSplit(c.Request.Context(), id, req.Spans)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, batch)
}

// Extract handles POST /api/v1/batches/:id/extract. The queue worker
// normally drives extraction; this endpoint exists for manual runs.
func (h *BatchHandler) Extract(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}
	batch, err := h.batchService.ExtractData(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, batch)
}

// Records handles GET /api/v1/batches/:id/records
func (h *BatchHandler) Records(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}
	records, err := h.batchService.GetRecords(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// Export handles GET /api/v1/batches/:id/export?format=csv|xlsx
func (h *BatchHandler) Export(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}
	batch, err := h.batchService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	records, err := h.batchService.GetRecords(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.SanitizeFilename(batch.OriginalName)

	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		var buf bytes.Buffer
		buf.Write(export.BOM)
		w := export.NewWriter(&buf)
		if err := w.WriteHeader(); err == nil {
			err = w.WriteRecords(records)
		}
		w.Flush()
		if err == nil {
			err = w.Error()
		}
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, records); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
	}
}

// Download handles GET /api/v1/batches/:id/download
func (h *BatchHandler) Download(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}
	url, err := h.batchService.GetDownloadURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// Delete handles DELETE /api/v1/batches/:id
func (h *BatchHandler) Delete(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}
	if err := h.batchService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

func batchID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "batch id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
