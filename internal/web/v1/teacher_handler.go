package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTeachers handles GET /api/teacher.
func (h *Handler) ListTeachers(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	teachers, err := h.teachers.List(ctx)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "List teachers failed")
		return
	}
	c.JSON(http.StatusOK, teachers)
}

// GetTeacher handles GET /api/teacher/:id.
func (h *Handler) GetTeacher(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	id, ok := parseID(c, logger, "id")
	if !ok {
		return
	}

	teacher, err := h.teachers.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Get teacher failed")
		return
	}
	c.JSON(http.StatusOK, teacher)
}
