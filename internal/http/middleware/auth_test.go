package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type stubAuth struct {
	tokens map[string]uuid.UUID
	roles  map[uuid.UUID]string
}

func (s stubAuth) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return uuid.Nil, apierr.Unauthorized("invalid_token", "invalid or expired token")
}

func (s stubAuth) Role(_ context.Context, id uuid.UUID) (string, error) {
	if r, ok := s.roles[id]; ok {
		return r, nil
	}
	return "", apierr.Unauthorized("invalid_token", "user not found")
}

func newAuthRouter(stub stubAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), stub, stub)
	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()).String())
	})
	r.GET("/admin", am.RequireAuth(), am.RequireRole("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	alice := uuid.New()
	r := newAuthRouter(stubAuth{tokens: map[string]uuid.UUID{"good": alice}})

	cases := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"missing", "/me", "", http.StatusUnauthorized},
		{"bad bearer", "/me", "Bearer nope", http.StatusUnauthorized},
		{"not bearer", "/me", "Basic good", http.StatusUnauthorized},
		{"bearer", "/me", "Bearer good", http.StatusOK},
		{"query token", "/me?token=good", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status == http.StatusOK && rec.Body.String() != alice.String() {
				t.Fatalf("user id not attached: %q", rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin, dev := uuid.New(), uuid.New()
	r := newAuthRouter(stubAuth{
		tokens: map[string]uuid.UUID{"a": admin, "d": dev},
		roles:  map[uuid.UUID]string{admin: "admin", dev: "developer"},
	})

	for token, want := range map[string]int{"a": http.StatusOK, "d": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("token %s: status = %d want %d", token, rec.Code, want)
		}
	}
}
