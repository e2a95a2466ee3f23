package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RioChndr/ai-resume-analyzer/internal/database"
	"github.com/RioChndr/ai-resume-analyzer/internal/ingest"
	"github.com/RioChndr/ai-resume-analyzer/internal/logger"
	apperrors "github.com/RioChndr/ai-resume-analyzer/pkg/errors"
)

// Boundary constraints: one accepted document type, capped size. Violations
// are rejected here, before any credential or registry row is produced.
const (
	acceptedFileType = "application/pdf"
	maxFileSize      = 5 << 20
)

type Handler struct {
	svc *ingest.Service
	db  *database.Queries
	log zerolog.Logger
}

func NewHandler(svc *ingest.Service, db *database.Queries) *Handler {
	return &Handler{
		svc: svc,
		db:  db,
		log: logger.Get(),
	}
}

type uploadURLRequest struct {
	FileName string `json:"file_name" binding:"required"`
	FileType string `json:"file_type" binding:"required"`
}

type confirmUploadRequest struct {
	FileKey  string `json:"file_key" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
	FileSize int64  `json:"file_size" binding:"required"`
	FileType string `json:"file_type" binding:"required"`
}

type resumeFileResponse struct {
	ID         uuid.UUID       `json:"id"`
	OwnerID    string          `json:"owner_id"`
	FileKey    string          `json:"file_key"`
	FileName   string          `json:"file_name"`
	FileSize   int64           `json:"file_size"`
	FileType   string          `json:"file_type"`
	ParsedData json.RawMessage `json:"parsed_data,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toResumeFileResponse(f database.ResumeFile) resumeFileResponse {
	return resumeFileResponse{
		ID:         f.ID,
		OwnerID:    f.OwnerID,
		FileKey:    f.ObjectKey,
		FileName:   f.FileName,
		FileSize:   f.FileSize,
		FileType:   f.FileType,
		ParsedData: f.ParsedData,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// CreateUploadURL issues a presigned PUT credential for a new resume upload.
func (h *Handler) CreateUploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.FileType != acceptedFileType {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF uploads are accepted"})
		return
	}

	owner := ownerID(c)
	cred, err := h.svc.RequestUpload(c.Request.Context(), owner, req.FileName, req.FileType)
	if err != nil {
		h.log.Error().Err(err).Str("owner_id", owner).Msg("Failed to issue upload credential")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue upload credential"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": cred.UploadURL,
		"file_key":   cred.Key,
		"file_name":  req.FileName,
		"file_type":  req.FileType,
		"owner_id":   owner,
	})
}

// ConfirmUpload registers a completed upload and triggers analysis.
func (h *Handler) ConfirmUpload(c *gin.Context) {
	var req confirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.FileType != acceptedFileType {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF uploads are accepted"})
		return
	}
	if req.FileSize > maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 5 MiB limit"})
		return
	}

	owner := ownerID(c)
	file, err := h.svc.ConfirmUpload(c.Request.Context(), owner, req.FileKey, req.FileName, req.FileSize, req.FileType)
	if err != nil {
		h.log.Error().Err(err).Str("owner_id", owner).Str("file_key", req.FileKey).Msg("Failed to register upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register upload"})
		return
	}

	c.JSON(http.StatusCreated, toResumeFileResponse(file))
}

// ListFiles returns the caller's resume files.
func (h *Handler) ListFiles(c *gin.Context) {
	owner := ownerID(c)
	files, err := h.svc.ListFiles(c.Request.Context(), owner)
	if err != nil {
		h.log.Error().Err(err).Str("owner_id", owner).Msg("Failed to list resume files")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]resumeFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toResumeFileResponse(f))
	}
	c.JSON(http.StatusOK, out)
}

// GetFileURL returns a short-lived read URL for one of the caller's files.
func (h *Handler) GetFileURL(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	owner := ownerID(c)
	fileURL, err := h.svc.GetFileURL(c.Request.Context(), owner, fileID)
	if err != nil {
		h.log.Error().Err(err).Str("file_id", fileID.String()).Msg("Failed to issue read credential")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if fileURL == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"presigned_url": fileURL.PresignedURL,
		"file_name":     fileURL.FileName,
	})
}

// Reanalyze re-runs extraction for one of the caller's files. Unlike the
// upload path, extraction failures surface to the caller here.
func (h *Handler) Reanalyze(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	owner := ownerID(c)
	parsed, err := h.svc.Reanalyze(c.Request.Context(), owner, fileID)
	if err != nil {
		var svcErr apperrors.ExtractionServiceError
		var valErr apperrors.ExtractionValidationError
		switch {
		case errors.As(err, &svcErr), errors.As(err, &valErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			h.log.Error().Err(err).Str("file_id", fileID.String()).Msg("Reanalysis failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze resume file"})
		}
		return
	}
	if parsed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.JSON(http.StatusOK, parsed)
}

// DeleteFile removes one of the caller's files. Idempotent: a second call on
// the same id reports deleted=false without an error.
func (h *Handler) DeleteFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	owner := ownerID(c)
	deleted, err := h.svc.DeleteFile(c.Request.Context(), owner, fileID)
	if err != nil {
		h.log.Error().Err(err).Str("file_id", fileID.String()).Msg("Failed to delete resume file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete resume file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func fileIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return uuid.Nil, false
	}
	return id, true
}
