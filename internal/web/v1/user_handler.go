package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/yoga-service/middleware"
)

// GetUser handles GET /api/user/:id.
func (h *Handler) GetUser(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	id, ok := parseID(c, logger, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Get user failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/user/:id. Users may only delete themselves.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	id, ok := parseID(c, logger, "id")
	if !ok {
		return
	}

	principal, _ := middleware.PrincipalFromContext(ctx)
	if err := h.users.Delete(ctx, principal, id); err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Delete user failed")
		return
	}

	logger.Info().Int64("user_id", id).Msg("User deleted")
	c.Status(http.StatusOK)
}
