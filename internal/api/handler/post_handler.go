package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradematch/tradematch-be/internal/api/dto"
	"github.com/tradematch/tradematch-be/internal/posts"
)

// CreatePost handles POST /api/v1/posts
func (h *MarketplaceHandler) CreatePost(c *gin.Context) {
	h.logger.Info("CreatePost called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected RFC3339"})
		return
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected RFC3339"})
		return
	}
	if !endDate.After(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), posts.CreateInput{
		Title:        req.Title,
		Content:      req.Content,
		Location:     req.Location,
		Salary:       req.Salary,
		Requirements: req.Requirements,
		PublisherID:  actor,
		StartDate:    startDate,
		EndDate:      endDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// GetPost handles GET /api/v1/posts/:post_id
func (h *MarketplaceHandler) GetPost(c *gin.Context) {
	postID := c.Param("post_id")
	if _, err := uuid.Parse(postID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID format"})
		return
	}

	post, err := h.posts.Get(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost handles DELETE /api/v1/posts/:post_id
// Cancels everything still open under the post before removing it.
func (h *MarketplaceHandler) DeletePost(c *gin.Context) {
	h.logger.Info("DeletePost called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	postID := c.Param("post_id")
	if _, err := uuid.Parse(postID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID format"})
		return
	}

	if err := h.posts.Delete(c.Request.Context(), postID, actorID(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": postID})
}
