package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRegistrarRecordsAndServes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	m := NewManifest()
	api := NewRegistrar(m, engine.Group("/api"))

	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	api.POST("/clients", "clients", true, "Create a client", ok)
	api.GET("/clients", "clients", true, "List clients", ok)
	auth := api.Group("/auth")
	auth.POST("/login", "auth", false, "Log in", ok)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("registered route not served: %d", rec.Code)
	}

	l := m.Listing()
	if l.Total != 3 || l.Categories["clients"] != 2 || l.Categories["auth"] != 1 {
		t.Fatalf("unexpected listing %+v", l)
	}
	want := []struct{ method, path string }{
		{http.MethodPost, "/api/auth/login"},
		{http.MethodGet, "/api/clients"},
		{http.MethodPost, "/api/clients"},
	}
	for i, w := range want {
		if l.Routes[i].Method != w.method || l.Routes[i].Path != w.path {
			t.Fatalf("route %d = %s %s, want %s %s", i, l.Routes[i].Method, l.Routes[i].Path, w.method, w.path)
		}
	}
	if l.Routes[0].Auth || !l.Routes[1].Auth {
		t.Fatalf("auth flags not recorded: %+v", l.Routes)
	}
}
