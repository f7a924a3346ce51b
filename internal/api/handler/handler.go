package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/tradematch/tradematch-be/internal/assignment"
	"github.com/tradematch/tradematch-be/internal/posts"
	"github.com/tradematch/tradematch-be/internal/profiles"
	"github.com/tradematch/tradematch-be/internal/recommend"
	"github.com/tradematch/tradematch-be/internal/requests"
)

// actorHeader carries the authenticated user's ID, set by the auth layer in
// front of this service.
const actorHeader = "X-User-ID"

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger      *slog.Logger
	Requests    *requests.Service
	Assignments *assignment.Service
	Posts       *posts.Service
	Profiles    *profiles.Service
	Recommender *recommend.Engine
}

// MarketplaceHandler handles request, job, post and profile HTTP endpoints
type MarketplaceHandler struct {
	logger      *slog.Logger
	requests    *requests.Service
	assignments *assignment.Service
	posts       *posts.Service
	profiles    *profiles.Service
	recommender *recommend.Engine
}

// NewMarketplaceHandler creates a new MarketplaceHandler instance
func NewMarketplaceHandler(deps *Dependencies) *MarketplaceHandler {
	return &MarketplaceHandler{
		logger:      deps.Logger,
		requests:    deps.Requests,
		assignments: deps.Assignments,
		posts:       deps.Posts,
		profiles:    deps.Profiles,
		recommender: deps.Recommender,
	}
}

// actorID extracts the acting user from the request headers; empty means
// unauthenticated.
func actorID(c *gin.Context) string {
	return c.GetHeader(actorHeader)
}
