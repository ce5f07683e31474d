package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return rec, body
}

func TestRespondPageCarriesPagination(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		RespondPage(c, []int{1, 2}, repoutil.Page{Page: 2, Limit: 10}.Result(25))
	})
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	p := body["pagination"].(map[string]any)
	if p["totalPages"].(float64) != 3 || p["page"].(float64) != 2 {
		t.Fatalf("unexpected pagination %v", p)
	}
}

func TestRespondErrorValidation(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		RespondError(c, apierr.Validation(map[string]string{"name": "is required"}))
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != false || body["code"] != "validation_failed" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["errors"].(map[string]any)["name"] != "is required" {
		t.Fatalf("missing field error: %v", body)
	}
}

func TestRespondErrorStripsSentinelPrefix(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) {
		RespondError(c, fmt.Errorf("create: %w", apierr.Conflict("email already in use")))
	})
	if body["message"] != "email already in use" || body["code"] != "conflict" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRespondErrorHidesDriverConflictText(t *testing.T) {
	ExposeErrorDetail(false)
	raw := fmt.Errorf("insert client: %w", fmt.Errorf("%w: UNIQUE constraint failed: client.email", apierr.ErrConflict))
	rec, body := serve(t, func(c *gin.Context) { RespondError(c, raw) })
	if rec.Code != http.StatusBadRequest || body["code"] != "conflict" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	if body["message"] != "Resource already exists" {
		t.Fatalf("message = %v", body["message"])
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("detail leaked: %v", body)
	}
}

func TestRespondErrorDetailOnlyOutsideProduction(t *testing.T) {
	t.Cleanup(func() { ExposeErrorDetail(false) })

	ExposeErrorDetail(false)
	rec, body := serve(t, func(c *gin.Context) { RespondError(c, errors.New("db down")) })
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("detail leaked: %v", body)
	}
	if body["message"] != "Internal server error" {
		t.Fatalf("message = %v", body["message"])
	}

	ExposeErrorDetail(true)
	_, body = serve(t, func(c *gin.Context) { RespondError(c, errors.New("db down")) })
	if body["error"] != "db down" {
		t.Fatalf("expected detail, got %v", body)
	}
}
