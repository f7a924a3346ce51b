package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradematch/tradematch-be/internal/api/dto"
	"github.com/tradematch/tradematch-be/internal/embedding"
	"github.com/tradematch/tradematch-be/internal/profiles"
)

// GetMyProfile handles GET /api/v1/profiles/me
func (h *MarketplaceHandler) GetMyProfile(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpsertMyProfile handles PUT /api/v1/profiles/me
func (h *MarketplaceHandler) UpsertMyProfile(c *gin.Context) {
	h.logger.Info("UpsertMyProfile called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	var req dto.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	profile, err := h.profiles.Upsert(c.Request.Context(), profiles.UpsertInput{
		UserID:        actor,
		PrimaryTrade:  req.PrimaryTrade,
		Skills:        req.Skills,
		Services:      req.Services,
		CoverageAreas: req.CoverageAreas,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// SetOpenForWork handles PUT /api/v1/profiles/me/open-for-work
// Enabling requires a profile embedding. When the gateway is down the flag
// stays on and the response says so, letting the client retry the embedding.
func (h *MarketplaceHandler) SetOpenForWork(c *gin.Context) {
	h.logger.Info("SetOpenForWork called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	var req dto.OpenForWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	profile, err := h.profiles.SetOpenForWork(c.Request.Context(), actor, *req.Open)
	if err != nil {
		if profile != nil && (errors.Is(err, embedding.ErrServiceUnavailable) || errors.Is(err, embedding.ErrBadResponse)) {
			c.JSON(http.StatusAccepted, gin.H{
				"profile": profile,
				"warning": "open-for-work enabled, embedding pending",
			})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
