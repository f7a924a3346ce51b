package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradematch/tradematch-be/internal/api/dto"
	"github.com/tradematch/tradematch-be/internal/domain"
)

// ListJobs handles GET /api/v1/jobs
// Returns the actor's jobs on either side of the marketplace, after advancing
// any time-driven transitions that are due.
func (h *MarketplaceHandler) ListJobs(c *gin.Context) {
	h.logger.Info("ListJobs called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	jobs, err := h.assignments.ListForUser(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// UpdateJobStatus handles PATCH /api/v1/jobs/:job_id/status
// Contractor-driven transitions only; time-driven ones happen in the sweep.
func (h *MarketplaceHandler) UpdateJobStatus(c *gin.Context) {
	h.logger.Info("UpdateJobStatus called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	var req dto.UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	target, err := domain.ParseJobStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job status"})
		return
	}

	job, err := h.assignments.UpdateStatus(c.Request.Context(), jobID, actorID(c), target)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}
