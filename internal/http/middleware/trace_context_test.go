package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-123" || rec.Header().Get(HeaderRequestID) != "req-123" {
		t.Fatalf("inbound request id not kept: body=%q header=%q", rec.Body.String(), rec.Header().Get(HeaderRequestID))
	}
	if rec.Header().Get(HeaderTraceID) == "" {
		t.Fatalf("trace id header missing")
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("a", maxInboundIDLen+1))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if len(rec.Body.String()) > maxInboundIDLen {
		t.Fatalf("oversized inbound id accepted")
	}
}
