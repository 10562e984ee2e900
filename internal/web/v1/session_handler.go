package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

// ListSessions handles GET /api/session.
func (h *Handler) ListSessions(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	sessions, err := h.sessions.List(ctx)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "List sessions failed")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession handles GET /api/session/:id.
func (h *Handler) GetSession(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	id, ok := parseID(c, logger, "id")
	if !ok {
		return
	}

	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Get session failed")
		return
	}
	c.JSON(http.StatusOK, session)
}

// CreateSession handles POST /api/session.
func (h *Handler) CreateSession(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	var req domain.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Create session failed")
		return
	}

	logger.Info().Int64("session_id", session.ID).Msg("Session created")
	c.JSON(http.StatusOK, session)
}

// UpdateSession handles PUT /api/session/:id.
func (h *Handler) UpdateSession(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	id, ok := parseID(c, logger, "id")
	if !ok {
		return
	}

	var req domain.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.Update(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Update session failed")
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession handles DELETE /api/session/:id.
func (h *Handler) DeleteSession(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	id, ok := parseID(c, logger, "id")
	if !ok {
		return
	}

	if err := h.sessions.Delete(ctx, id); err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Delete session failed")
		return
	}

	logger.Info().Int64("session_id", id).Msg("Session deleted")
	c.Status(http.StatusOK)
}

// Participate handles POST /api/session/:id/participate/:userId.
func (h *Handler) Participate(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	sessionID, ok := parseID(c, logger, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, logger, "userId")
	if !ok {
		return
	}

	if err := h.sessions.Participate(ctx, sessionID, userID); err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Participate failed")
		return
	}

	logger.Info().Int64("session_id", sessionID).Int64("participant_id", userID).Msg("User joined session")
	c.Status(http.StatusOK)
}

// NoLongerParticipate handles DELETE /api/session/:id/participate/:userId.
func (h *Handler) NoLongerParticipate(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	sessionID, ok := parseID(c, logger, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, logger, "userId")
	if !ok {
		return
	}

	if err := h.sessions.NoLongerParticipate(ctx, sessionID, userID); err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Leave session failed")
		return
	}

	logger.Info().Int64("session_id", sessionID).Int64("participant_id", userID).Msg("User left session")
	c.Status(http.StatusOK)
}
