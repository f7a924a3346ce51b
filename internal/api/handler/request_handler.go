package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradematch/tradematch-be/internal/api/dto"
	"github.com/tradematch/tradematch-be/internal/domain"
	"github.com/tradematch/tradematch-be/internal/requests"
)

const defaultPageSize = 20

// CreateRequest handles POST /api/v1/posts/:post_id/requests
// A subcontractor applies to a post; the slot model makes this idempotent.
func (h *MarketplaceHandler) CreateRequest(c *gin.Context) {
	h.logger.Info("CreateRequest called",
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

	var req dto.CreateRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.requests.CreateOrRevive(c.Request.Context(), postID, actor, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyRequested {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// CreateInvite handles POST /api/v1/posts/:post_id/invites
// The publishing contractor invites a subcontractor into the same slot.
func (h *MarketplaceHandler) CreateInvite(c *gin.Context) {
	h.logger.Info("CreateInvite called",
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

	var req dto.InviteRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if _, err := uuid.Parse(req.SubcontractorID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcontractor ID format"})
		return
	}

	result, err := h.requests.InviteOrRevive(c.Request.Context(), postID, actor, req.SubcontractorID, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyRequested {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// AcceptRequest handles POST /api/v1/requests/:request_id/accept
func (h *MarketplaceHandler) AcceptRequest(c *gin.Context) {
	h.runTransition(c, "AcceptRequest", h.requests.Accept)
}

// DenyRequest handles POST /api/v1/requests/:request_id/deny
func (h *MarketplaceHandler) DenyRequest(c *gin.Context) {
	h.runTransition(c, "DenyRequest", h.requests.Deny)
}

// WithdrawRequest handles POST /api/v1/requests/:request_id/withdraw
func (h *MarketplaceHandler) WithdrawRequest(c *gin.Context) {
	h.runTransition(c, "WithdrawRequest", h.requests.Withdraw)
}

// runTransition executes one of the accept/deny/withdraw transitions, which
// share parameter validation and response shape.
func (h *MarketplaceHandler) runTransition(c *gin.Context, name string, transition func(ctx context.Context, requestID, actorID string) (*requests.Result, error)) {
	h.logger.Info(name+" called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	requestID := c.Param("request_id")
	if _, err := uuid.Parse(requestID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID format"})
		return
	}

	result, err := transition(c.Request.Context(), requestID, actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListRequests handles GET /api/v1/requests
// Lists the actor's requests from one side of the marketplace with keyset
// pagination.
func (h *MarketplaceHandler) ListRequests(c *gin.Context) {
	h.logger.Info("ListRequests called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	var query dto.ListRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	var status domain.RequestStatus
	if query.Status != "" {
		parsed, err := domain.ParseRequestStatus(query.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		status = parsed
	}

	cursor, err := DecodeRequestCursor(query.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
		return
	}

	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultPageSize
	}

	rows, err := h.requests.ListMine(c.Request.Context(), actor, requests.Role(query.Role), status, pageSize, cursor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// One extra row signals another page.
	var nextCursor string
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor, _ = EncodeRequestCursor(&requests.Cursor{
			CreatedAt: last.CreatedAt,
			RequestID: last.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListRequestsResponse{
		Requests:   rows,
		NextCursor: nextCursor,
	})
}

// PendingRequestCount handles GET /api/v1/requests/pending-count
// Returns the contractor's badge count of open requests.
func (h *MarketplaceHandler) PendingRequestCount(c *gin.Context) {
	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing user identity"})
		return
	}

	count, err := h.requests.CountPendingForContractor(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending_count": count})
}
