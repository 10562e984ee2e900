package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/internal/core/repository/sqlite"
	logicv1 "github.com/duynhne/yoga-service/internal/logic/v1"
	"github.com/duynhne/yoga-service/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "yoga.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tokens := logicv1.NewTokenService("test-secret", time.Hour)
	auth := logicv1.NewAuthService(store.Users(), tokens)
	handler := NewHandler(
		auth,
		logicv1.NewSessionService(store.Sessions(), store.Users(), store.Teachers()),
		logicv1.NewUserService(store.Users()),
		logicv1.NewTeacherService(store.Teachers()),
	)

	r := gin.New()
	api := r.Group("/api", middleware.NewGate(tokens, auth).Middleware())
	handler.RegisterRoutes(api)
	return &testAPI{t: t, router: r}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// signUp registers a user and returns its id and bearer token.
func (a *testAPI) signUp(email string) (int64, string) {
	a.t.Helper()

	w := a.do(http.MethodPost, "/api/auth/register", "", domain.RegisterRequest{
		Email: email, FirstName: "Alice", LastName: "Martin", Password: "secret1",
	})
	if w.Code != http.StatusOK {
		a.t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body)
	}
	w = a.do(http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: email, Password: "secret1"})
	if w.Code != http.StatusOK {
		a.t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body)
	}
	var resp domain.AuthResponse
	decode(a.t, w, &resp)
	return resp.ID, resp.Token
}

func (a *testAPI) createSession(token string) domain.Session {
	a.t.Helper()

	teacherID := int64(1)
	w := a.do(http.MethodPost, "/api/session", token, domain.SessionRequest{
		Name:        "Morning flow",
		Date:        time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC),
		TeacherID:   &teacherID,
		Description: "Vinyasa",
	})
	if w.Code != http.StatusOK {
		a.t.Fatalf("create session: status %d body %s", w.Code, w.Body)
	}
	var session domain.Session
	decode(a.t, w, &session)
	return session
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %s: %v", w.Body, err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	register := domain.RegisterRequest{Email: "a@b.com", FirstName: "Alice", LastName: "Martin", Password: "secret1"}
	w := api.do(http.MethodPost, "/api/auth/register", "", register)
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, want 200", w.Code)
	}
	var msg domain.MessageResponse
	decode(t, w, &msg)
	if msg.Message != "User registered successfully!" {
		t.Fatalf("register message = %q", msg.Message)
	}

	w = api.do(http.MethodPost, "/api/auth/register", "", register)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second register status = %d, want 400", w.Code)
	}
	decode(t, w, &msg)
	if msg.Message != "Error: Email is already taken!" {
		t.Fatalf("second register message = %q", msg.Message)
	}

	w = api.do(http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: "a@b.com", Password: "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", w.Code)
	}
	var auth domain.AuthResponse
	decode(t, w, &auth)
	if auth.Token == "" || auth.Type != "Bearer" || auth.Username != "a@b.com" {
		t.Fatalf("login response = %+v", auth)
	}

	w = api.do(http.MethodGet, "/api/auth/me", auth.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200", w.Code)
	}
	var me domain.User
	decode(t, w, &me)
	if me.ID != auth.ID || me.Email != "a@b.com" {
		t.Fatalf("me = %+v", me)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	tests := []struct {
		name string
		req  domain.RegisterRequest
	}{
		{name: "bad email", req: domain.RegisterRequest{Email: "nope", FirstName: "Alice", LastName: "Martin", Password: "secret1"}},
		{name: "short first name", req: domain.RegisterRequest{Email: "a@b.com", FirstName: "Al", LastName: "Martin", Password: "secret1"}},
		{name: "short password", req: domain.RegisterRequest{Email: "a@b.com", FirstName: "Alice", LastName: "Martin", Password: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := api.do(http.MethodPost, "/api/auth/register", "", tt.req); w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestLoginBadCredentials(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	api.signUp("a@b.com")

	w := api.do(http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: "a@b.com", Password: "wrong-password"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/session"},
		{http.MethodGet, "/api/teacher"},
		{http.MethodGet, "/api/user/1"},
		{http.MethodPost, "/api/session/1/participate/1"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, p := range paths {
		for _, token := range []string{"", "not-a-jwt", "."} {
			w := api.do(p.method, p.path, token, nil)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("%s %s with token %q: status = %d, want 401", p.method, p.path, token, w.Code)
			}
		}
	}
}

func TestParticipateFlow(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	userID, token := api.signUp("yoga@studio.com")
	session := api.createSession(token)

	participate := fmt.Sprintf("/api/session/%d/participate/%d", session.ID, userID)

	w := api.do(http.MethodPost, participate, token, nil)
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("participate: status %d body %q, want 200 empty", w.Code, w.Body)
	}
	if w = api.do(http.MethodPost, participate, token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("second participate status = %d, want 400", w.Code)
	}

	w = api.do(http.MethodGet, fmt.Sprintf("/api/session/%d", session.ID), token, nil)
	var got domain.Session
	decode(t, w, &got)
	if len(got.Users) != 1 || got.Users[0] != userID {
		t.Fatalf("roster = %v, want [%d]", got.Users, userID)
	}

	if w = api.do(http.MethodDelete, participate, token, nil); w.Code != http.StatusOK {
		t.Fatalf("leave status = %d, want 200", w.Code)
	}
	if w = api.do(http.MethodDelete, participate, token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("second leave status = %d, want 400", w.Code)
	}
}

func TestParticipateErrors(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	userID, token := api.signUp("yoga@studio.com")
	session := api.createSession(token)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "missing session", method: http.MethodPost, path: fmt.Sprintf("/api/session/999/participate/%d", userID), want: http.StatusNotFound},
		{name: "missing session and user", method: http.MethodPost, path: "/api/session/999/participate/999", want: http.StatusNotFound},
		{name: "missing user", method: http.MethodPost, path: fmt.Sprintf("/api/session/%d/participate/999", session.ID), want: http.StatusNotFound},
		{name: "non-numeric session", method: http.MethodPost, path: fmt.Sprintf("/api/session/abc/participate/%d", userID), want: http.StatusBadRequest},
		{name: "non-numeric user", method: http.MethodDelete, path: fmt.Sprintf("/api/session/%d/participate/abc", session.ID), want: http.StatusBadRequest},
		{name: "leave missing session", method: http.MethodDelete, path: fmt.Sprintf("/api/session/999/participate/%d", userID), want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := api.do(tt.method, tt.path, token, nil); w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body)
			}
		})
	}
}

func TestSessionCRUD(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	_, token := api.signUp("yoga@studio.com")
	session := api.createSession(token)

	unknownTeacher := int64(42)
	update := domain.SessionRequest{
		Name:        "Evening flow",
		Date:        time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC),
		TeacherID:   &unknownTeacher,
		Description: "Yin",
	}
	if w := api.do(http.MethodPut, fmt.Sprintf("/api/session/%d", session.ID), token, update); w.Code != http.StatusBadRequest {
		t.Fatalf("update with unknown teacher status = %d, want 400", w.Code)
	}

	teacherID := int64(2)
	update.TeacherID = &teacherID
	w := api.do(http.MethodPut, fmt.Sprintf("/api/session/%d", session.ID), token, update)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", w.Code)
	}
	var updated domain.Session
	decode(t, w, &updated)
	if updated.Name != "Evening flow" || *updated.TeacherID != 2 {
		t.Fatalf("updated = %+v", updated)
	}

	w = api.do(http.MethodGet, "/api/session", token, nil)
	var list []domain.Session
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("sessions = %d, want 1", len(list))
	}

	if w = api.do(http.MethodDelete, fmt.Sprintf("/api/session/%d", session.ID), token, nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", w.Code)
	}
	if w = api.do(http.MethodGet, fmt.Sprintf("/api/session/%d", session.ID), token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
	if w = api.do(http.MethodDelete, fmt.Sprintf("/api/session/%d", session.ID), token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
	if w = api.do(http.MethodGet, "/api/session/abc", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric get status = %d, want 400", w.Code)
	}
}

func TestTeachers(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	_, token := api.signUp("yoga@studio.com")

	w := api.do(http.MethodGet, "/api/teacher", token, nil)
	var teachers []domain.Teacher
	decode(t, w, &teachers)
	if len(teachers) != 2 {
		t.Fatalf("teachers = %+v, want the 2 seeded ones", teachers)
	}
	if w = api.do(http.MethodGet, "/api/teacher/1", token, nil); w.Code != http.StatusOK {
		t.Fatalf("get teacher status = %d, want 200", w.Code)
	}
	if w = api.do(http.MethodGet, "/api/teacher/99", token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing teacher status = %d, want 404", w.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	aliceID, aliceToken := api.signUp("alice@studio.com")
	bobID, _ := api.signUp("bob@studio.com")

	if w := api.do(http.MethodDelete, fmt.Sprintf("/api/user/%d", bobID), aliceToken, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("delete other status = %d, want 401", w.Code)
	}
	if w := api.do(http.MethodDelete, "/api/user/999", aliceToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing status = %d, want 404", w.Code)
	}
	if w := api.do(http.MethodGet, fmt.Sprintf("/api/user/%d", bobID), aliceToken, nil); w.Code != http.StatusOK {
		t.Fatalf("get user status = %d, want 200", w.Code)
	}
	if w := api.do(http.MethodDelete, fmt.Sprintf("/api/user/%d", aliceID), aliceToken, nil); w.Code != http.StatusOK {
		t.Fatalf("delete self status = %d, want 200", w.Code)
	}
	// The token outlives the account but no longer resolves to a principal.
	if w := api.do(http.MethodGet, "/api/auth/me", aliceToken, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("me after delete status = %d, want 401", w.Code)
	}
}
