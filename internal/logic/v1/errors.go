// Package v1 provides the booking business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors that represent the business outcomes
// handlers translate into HTTP statuses. They are wrapped with context using
// fmt.Errorf("%w") when returned from business logic methods.
//
// Example Usage:
//
//	if session == nil {
//	    return fmt.Errorf("participate in session %d: %w", sessionID, ErrSessionNotFound)
//	}
//
//	if session.HasParticipant(userID) {
//	    return fmt.Errorf("participate in session %d: %w", sessionID, ErrAlreadyParticipating)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrSessionNotFound), errors.Is(err, logicv1.ErrUserNotFound):
//	    c.Status(http.StatusNotFound)
//	case errors.Is(err, logicv1.ErrAlreadyParticipating):
//	    c.Status(http.StatusBadRequest)
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for business operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials indicates the email/password pair does not match.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist in the system.
	// HTTP Status: 404 Not Found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the email is already registered.
	// HTTP Status: 400 Bad Request
	ErrUserExists = errors.New("user already exists")

	// ErrForbiddenDelete indicates the caller tried to delete another account.
	// HTTP Status: 401 Unauthorized
	ErrForbiddenDelete = errors.New("cannot delete another user")

	// ErrSessionNotFound indicates the yoga session does not exist.
	// HTTP Status: 404 Not Found
	ErrSessionNotFound = errors.New("session not found")

	// ErrTeacherNotFound indicates the teacher does not exist.
	// HTTP Status: 404 Not Found
	ErrTeacherNotFound = errors.New("teacher not found")

	// ErrInvalidTeacher indicates a session write referenced an unknown teacher.
	// HTTP Status: 400 Bad Request
	ErrInvalidTeacher = errors.New("unknown teacher")

	// ErrAlreadyParticipating indicates the user is already on the roster.
	// HTTP Status: 400 Bad Request
	ErrAlreadyParticipating = errors.New("user already participates")

	// ErrNotParticipating indicates the user is not on the roster.
	// HTTP Status: 400 Bad Request
	ErrNotParticipating = errors.New("user does not participate")

	// ErrRosterContention indicates the roster kept changing underneath a
	// participate/leave call until the retry budget ran out.
	// HTTP Status: 409 Conflict
	ErrRosterContention = errors.New("roster changed concurrently")
)
