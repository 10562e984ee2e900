package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	logicv1 "github.com/duynhne/yoga-service/internal/logic/v1"
)

// writeError maps a logic-layer error to its HTTP response.
func writeError(c *gin.Context, logger *zerolog.Logger, err error, msg string) {
	status, body := errorResponse(err)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Msg(msg)
	c.JSON(status, body)
}

func errorResponse(err error) (int, gin.H) {
	switch {
	case errors.Is(err, logicv1.ErrSessionNotFound):
		return http.StatusNotFound, gin.H{"message": "Session not found"}
	case errors.Is(err, logicv1.ErrUserNotFound):
		return http.StatusNotFound, gin.H{"message": "User not found"}
	case errors.Is(err, logicv1.ErrTeacherNotFound):
		return http.StatusNotFound, gin.H{"message": "Teacher not found"}
	case errors.Is(err, logicv1.ErrAlreadyParticipating):
		return http.StatusBadRequest, gin.H{"message": "User already participates in this session"}
	case errors.Is(err, logicv1.ErrNotParticipating):
		return http.StatusBadRequest, gin.H{"message": "User does not participate in this session"}
	case errors.Is(err, logicv1.ErrInvalidTeacher):
		return http.StatusBadRequest, gin.H{"message": "Unknown teacher"}
	case errors.Is(err, logicv1.ErrUserExists):
		return http.StatusBadRequest, gin.H{"message": "Error: Email is already taken!"}
	case errors.Is(err, logicv1.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"message": "Bad credentials"}
	case errors.Is(err, logicv1.ErrForbiddenDelete):
		return http.StatusUnauthorized, gin.H{"message": "Cannot delete another user"}
	case errors.Is(err, logicv1.ErrRosterContention):
		return http.StatusConflict, gin.H{"message": "Session roster is busy, retry later"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Internal server error"}
	}
}

// parseID reads a numeric path parameter, answering 400 when it is not one.
func parseID(c *gin.Context, logger *zerolog.Logger, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warn().Err(err).Str(name, raw).Msg("Invalid path id")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
