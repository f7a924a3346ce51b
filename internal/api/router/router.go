package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradematch/tradematch-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "tradematch-api-service",
		})
	})

	h := handler.NewMarketplaceHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		posts := v1.Group("/posts")
		{
			// POST /api/v1/posts - Publish a new post
			posts.POST("", h.CreatePost)

			// GET /api/v1/posts/:post_id - Get post details
			posts.GET("/:post_id", h.GetPost)

			// DELETE /api/v1/posts/:post_id - Delete a post and cancel its open work
			posts.DELETE("/:post_id", h.DeletePost)

			// POST /api/v1/posts/:post_id/requests - Subcontractor applies to a post
			posts.POST("/:post_id/requests", h.CreateRequest)

			// POST /api/v1/posts/:post_id/invites - Contractor invites a subcontractor
			posts.POST("/:post_id/invites", h.CreateInvite)

			// GET /api/v1/posts/:post_id/candidates - Rank open-for-work profiles for a post
			posts.GET("/:post_id/candidates", h.PostCandidates)
		}

		requests := v1.Group("/requests")
		{
			// GET /api/v1/requests - List the actor's requests
			requests.GET("", h.ListRequests)

			// GET /api/v1/requests/pending-count - Contractor badge count
			requests.GET("/pending-count", h.PendingRequestCount)

			// POST /api/v1/requests/:request_id/accept - Accept a pending request
			requests.POST("/:request_id/accept", h.AcceptRequest)

			// POST /api/v1/requests/:request_id/deny - Deny or retract a pending request
			requests.POST("/:request_id/deny", h.DenyRequest)

			// POST /api/v1/requests/:request_id/withdraw - Withdraw a pending application
			requests.POST("/:request_id/withdraw", h.WithdrawRequest)
		}

		jobs := v1.Group("/jobs")
		{
			// GET /api/v1/jobs - List the actor's jobs
			jobs.GET("", h.ListJobs)

			// PATCH /api/v1/jobs/:job_id/status - Contractor-driven job transition
			jobs.PATCH("/:job_id/status", h.UpdateJobStatus)
		}

		profiles := v1.Group("/profiles")
		{
			// GET /api/v1/profiles/me - Get own profile
			profiles.GET("/me", h.GetMyProfile)

			// PUT /api/v1/profiles/me - Upsert own profile
			profiles.PUT("/me", h.UpsertMyProfile)

			// PUT /api/v1/profiles/me/open-for-work - Toggle the open-for-work flag
			profiles.PUT("/me/open-for-work", h.SetOpenForWork)
		}

		// GET /api/v1/recommendations/posts - Rank posts for the actor's profile
		v1.GET("/recommendations/posts", h.RecommendPosts)
	}

	return r
}
