package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradematch/tradematch-be/internal/api/dto"
)

// RecommendPosts handles GET /api/v1/recommendations/posts
// Ranks embedded posts against the actor's profile embedding, annotated with
// the actor's own outstanding request per post.
func (h *MarketplaceHandler) RecommendPosts(c *gin.Context) {
	h.logger.Info("RecommendPosts called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	var query dto.TopKQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ranked, err := h.recommender.RankPostsForProfile(c.Request.Context(), profile, actor, query.TopK)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": ranked})
}

// PostCandidates handles GET /api/v1/posts/:post_id/candidates
// Ranks the open-for-work pool against the post. Publisher only.
func (h *MarketplaceHandler) PostCandidates(c *gin.Context) {
	h.logger.Info("PostCandidates called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	postID := c.Param("post_id")
	if _, err := uuid.Parse(postID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID format"})
		return
	}

	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	var query dto.TopKQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	post, err := h.posts.Get(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if post.PublisherID != actor {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the publisher may list candidates"})
		return
	}

	ranked, err := h.recommender.RankProfilesForPost(c.Request.Context(), post, query.TopK)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": ranked})
}
