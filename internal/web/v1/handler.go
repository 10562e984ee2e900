package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/internal/logger"
	logicv1 "github.com/duynhne/yoga-service/internal/logic/v1"
	"github.com/duynhne/yoga-service/middleware"
)

// Handler groups HTTP handlers for the booking API v1.
// Dependencies are injected via the constructor, no global state.
type Handler struct {
	auth     *logicv1.AuthService
	sessions *logicv1.SessionService
	users    *logicv1.UserService
	teachers *logicv1.TeacherService
}

// NewHandler creates a new Handler with the given services.
func NewHandler(auth *logicv1.AuthService, sessions *logicv1.SessionService, users *logicv1.UserService, teachers *logicv1.TeacherService) *Handler {
	return &Handler{
		auth:     auth,
		sessions: sessions,
		users:    users,
		teachers: teachers,
	}
}

// RegisterRoutes registers all API v1 routes on the given router group.
// The group must already run the authentication gate; every route except
// login and register additionally requires a principal.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/register", h.Register)

	secured := rg.Group("", middleware.RequireAuth())
	secured.GET("/auth/me", h.GetMe)

	secured.GET("/session", h.ListSessions)
	secured.POST("/session", h.CreateSession)
	secured.GET("/session/:id", h.GetSession)
	secured.PUT("/session/:id", h.UpdateSession)
	secured.DELETE("/session/:id", h.DeleteSession)
	secured.POST("/session/:id/participate/:userId", h.Participate)
	secured.DELETE("/session/:id/participate/:userId", h.NoLongerParticipate)

	secured.GET("/teacher", h.ListTeachers)
	secured.GET("/teacher/:id", h.GetTeacher)

	secured.GET("/user/:id", h.GetUser)
	secured.DELETE("/user/:id", h.DeleteUser)
}

func startRequestSpan(c *gin.Context) (context.Context, trace.Span, *zerolog.Logger) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	return ctx, span, logger.FromContext(ctx)
}

// Login handles HTTP request for user login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	response, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Login failed")
		return
	}

	logger.Info().Int64("user_id", response.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Register handles HTTP request for user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	userID, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Registration failed")
		return
	}

	logger.Info().Int64("user_id", userID).Msg("Registration successful")
	c.JSON(http.StatusOK, domain.MessageResponse{Message: "User registered successfully!"})
}

// GetMe returns the authenticated caller.
// GET /api/auth/me
// Authorization: Bearer <token>
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span, logger := startRequestSpan(c)
	defer span.End()

	principal, _ := middleware.PrincipalFromContext(ctx)
	user, err := h.users.Get(ctx, principal.ID)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, err, "Load current user failed")
		return
	}
	c.JSON(http.StatusOK, user)
}
