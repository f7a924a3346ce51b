package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradematch/tradematch-be/internal/domain"
	"github.com/tradematch/tradematch-be/internal/embedding"
)

// respondError maps domain and gateway errors onto HTTP statuses in one
// place. Anything unrecognized is a 500.
func (h *MarketplaceHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOperation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, embedding.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, embedding.ErrBadResponse):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Unhandled error", slog.Any("error", err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
