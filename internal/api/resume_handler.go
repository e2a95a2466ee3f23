package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RioChndr/ai-resume-analyzer/internal/database"
)

type resumeExperience struct {
	Company     string `json:"company" binding:"required"`
	Year        string `json:"year" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// The form submits skills as one comma-separated string; they are stored as
// a Postgres text array.
type resumeRequest struct {
	Name       string             `json:"name" binding:"required"`
	Email      string             `json:"email" binding:"required,email"`
	Phone      string             `json:"phone" binding:"required"`
	Location   string             `json:"location" binding:"required"`
	Skills     string             `json:"skills" binding:"required"`
	Experience []resumeExperience `json:"experience" binding:"required,min=1,dive"`
}

type resumeResponse struct {
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Phone      string             `json:"phone"`
	Location   string             `json:"location"`
	Skills     string             `json:"skills"`
	Experience []resumeExperience `json:"experience"`
}

// GetResume returns the caller's structured resume record, or null when none
// has been saved yet.
func (h *Handler) GetResume(c *gin.Context) {
	owner := ownerID(c)
	resume, err := h.db.GetResumeByOwner(c.Request.Context(), owner)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("owner_id", owner).Msg("Failed to load resume record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var experience []resumeExperience
	if len(resume.Experience) > 0 {
		if err := json.Unmarshal(resume.Experience, &experience); err != nil {
			h.log.Error().Err(err).Str("owner_id", owner).Msg("Corrupt experience payload in resume record")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, resumeResponse{
		Name:       resume.Name,
		Email:      resume.Email,
		Phone:      resume.Phone,
		Location:   resume.Location,
		Skills:     strings.Join(resume.Skills, ", "),
		Experience: experience,
	})
}

// PutResume upserts the caller's structured resume record.
func (h *Handler) PutResume(c *gin.Context) {
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	skills := make([]string, 0)
	for _, part := range strings.Split(req.Skills, ",") {
		if s := strings.TrimSpace(part); s != "" {
			skills = append(skills, s)
		}
	}

	experience, err := json.Marshal(req.Experience)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	owner := ownerID(c)
	if _, err := h.db.UpsertResume(c.Request.Context(), database.UpsertResumeParams{
		OwnerID:    owner,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Location:   req.Location,
		Skills:     skills,
		Experience: experience,
	}); err != nil {
		h.log.Error().Err(err).Str("owner_id", owner).Msg("Failed to save resume record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save resume"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resume saved"})
}
