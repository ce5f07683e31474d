package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	httpH "github.com/yungbote/projectdesk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/projectdesk-backend/internal/http/middleware"
	"github.com/yungbote/projectdesk-backend/internal/http/routes"
	"github.com/yungbote/projectdesk-backend/internal/platform/filestore"
	"github.com/yungbote/projectdesk-backend/internal/platform/tokens"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type nopMailer struct{}

func (nopMailer) SendWelcome(context.Context, *types.User)         {}
func (nopMailer) SendPasswordChanged(context.Context, *types.User) {}

type testAPI struct {
	t       *testing.T
	engine  *gin.Engine
	db      *gorm.DB
	issuer  *tokens.Issuer
	user    *types.User
	token   string
	uploads string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)

	issuer, err := tokens.NewIssuer(tokens.Config{AccessSecret: "access-test", RefreshSecret: "refresh-test"})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	uploads := t.TempDir()
	local, err := filestore.NewLocalStore(uploads, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	store := filestore.NewFallbackStore(log, nil, local)
	pub := realtime.NopPublisher{}

	userRepo := repos.NewUserRepo(db, log)
	clientRepo := repos.NewClientRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	testCaseRepo := repos.NewTestCaseRepo(db, log)
	resultRepo := repos.NewTestResultRepo(db, log)
	bugRepo := repos.NewBugRepo(db, log)
	discussionRepo := repos.NewDiscussionRepo(db, log)
	replyRepo := repos.NewDiscussionReplyRepo(db, log)

	authService := services.NewAuthService(db, log, userRepo, issuer, nopMailer{})
	userService := services.NewUserService(db, log, userRepo)
	manifest := routes.NewManifest()

	engine := NewRouter(RouterConfig{
		Log:            log,
		Manifest:       manifest,
		UploadDir:      uploads,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, authService, userService),
		AuthHandler:    httpH.NewAuthHandler(log, authService),
		UserHandler:    httpH.NewUserHandler(userService),
		ClientHandler:  httpH.NewClientHandler(services.NewClientService(db, log, clientRepo, pub)),
		ProjectHandler: httpH.NewProjectHandler(services.NewProjectService(db, log, projectRepo, clientRepo, testCaseRepo, bugRepo, pub)),
		TestCaseHandler: httpH.NewTestCaseHandler(services.NewTestCaseService(
			db, log, testCaseRepo, resultRepo, projectRepo, bugRepo, clientRepo, userRepo, pub,
		)),
		BugHandler:        httpH.NewBugHandler(services.NewBugService(db, log, bugRepo, pub)),
		DiscussionHandler: httpH.NewDiscussionHandler(services.NewDiscussionService(db, log, discussionRepo, replyRepo, userRepo, pub)),
		DocumentHandler:   httpH.NewDocumentHandler(log, services.NewDocumentService(db, log, repos.NewDocumentRepo(db, log), store, pub)),
		SystemHandler: httpH.NewSystemHandler(services.NewSystemService(db, log, services.SystemConfig{
			AppEnv:   "test",
			DBDriver: "sqlite",
			Models:   dbpkg.Models(),
		}), manifest),
		HealthHandler: httpH.NewHealthHandler(),
	})

	u := testutil.SeedUser(t, context.Background(), db, "dev@example.com")
	token, err := issuer.IssueAccessToken(u.ID)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	return &testAPI{t: t, engine: engine, db: db, issuer: issuer, user: u, token: token, uploads: uploads}
}

type envelope struct {
	Success    bool              `json:"success"`
	Data       json.RawMessage   `json:"data"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	Errors     map[string]string `json:"errors"`
	Pagination *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
	} `json:"pagination"`
}

func (a *testAPI) do(method, target string, body any, token string) (int, envelope) {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(req)
}

func (a *testAPI) serve(req *http.Request) (int, envelope) {
	a.t.Helper()
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: decode body: %v (%s)", req.Method, req.URL, err, rec.Body.String())
	}
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
	return v
}

func TestHealthcheck(t *testing.T) {
	a := newTestAPI(t)
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck = %d %q", rec.Code, rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)

	status, env := a.do(http.MethodPost, "/api/auth/login", gin.H{"email": "dev@example.com", "password": "wrong-password"}, "")
	if status != http.StatusUnauthorized || env.Success || env.Code != "invalid_credentials" {
		t.Fatalf("wrong password: %d %+v", status, env)
	}
	var stored types.User
	if err := a.db.First(&stored, "id = ?", a.user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.LastLogin != nil {
		t.Fatalf("lastLogin touched by failed login")
	}

	status, env = a.do(http.MethodPost, "/api/auth/login", gin.H{"email": "DEV@example.com", "password": testutil.SeedPassword}, "")
	if status != http.StatusOK {
		t.Fatalf("login: %d %+v", status, env)
	}
	res := decode[map[string]any](t, env.Data)
	if res["token"] == "" || res["refreshToken"] == "" {
		t.Fatalf("missing tokens: %v", res)
	}
	if user := res["user"].(map[string]any); user["password"] != nil {
		t.Fatalf("password leaked in response")
	}

	if err := a.db.Model(&types.User{}).Where("id = ?", a.user.ID).Update("status", types.UserStatusSuspended).Error; err != nil {
		t.Fatalf("suspend: %v", err)
	}
	status, env = a.do(http.MethodPost, "/api/auth/login", gin.H{"email": "dev@example.com", "password": testutil.SeedPassword}, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("inactive login: %d %+v", status, env)
	}
	status, env = a.do(http.MethodGet, "/api/clients", nil, a.token)
	if status != http.StatusUnauthorized || env.Code != "account_inactive" {
		t.Fatalf("suspended token: %d %+v", status, env)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newTestAPI(t)
	status, env := a.do(http.MethodGet, "/api/clients", nil, "")
	if status != http.StatusUnauthorized || env.Success {
		t.Fatalf("no token: %d %+v", status, env)
	}
	status, _ = a.do(http.MethodGet, "/api/clients", nil, a.token[:len(a.token)-4])
	if status != http.StatusUnauthorized {
		t.Fatalf("truncated token: %d", status)
	}
	status, _ = a.do(http.MethodGet, "/api/auth/me", nil, a.token)
	if status != http.StatusOK {
		t.Fatalf("me: %d", status)
	}
}

func TestClientPaginationAndRepeatableReads(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		testutil.SeedClient(t, ctx, a.db, fmt.Sprintf("Client %02d", i), fmt.Sprintf("c%02d@example.com", i))
	}

	status, env := a.do(http.MethodGet, "/api/clients?page=2&limit=10", nil, a.token)
	if status != http.StatusOK {
		t.Fatalf("list: %d %+v", status, env)
	}
	rows := decode[[]map[string]any](t, env.Data)
	if len(rows) != 10 || env.Pagination == nil || env.Pagination.TotalPages != 3 || env.Pagination.Total != 25 {
		t.Fatalf("page 2: %d rows, pagination %+v", len(rows), env.Pagination)
	}
	if rows[0]["logo"] != types.DefaultClientLogo {
		t.Fatalf("logo not defaulted: %v", rows[0]["logo"])
	}

	id := rows[0]["id"].(string)
	_, first := a.do(http.MethodGet, "/api/clients/"+id, nil, a.token)
	_, second := a.do(http.MethodGet, "/api/clients/"+id, nil, a.token)
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatalf("repeated reads differ:\n%s\n%s", first.Data, second.Data)
	}

	status, env = a.do(http.MethodGet, "/api/clients?status=Bogus", nil, a.token)
	if status != http.StatusBadRequest || env.Errors["status"] == "" {
		t.Fatalf("bad status filter: %d %+v", status, env)
	}
	status, _ = a.do(http.MethodGet, "/api/clients/not-a-uuid", nil, a.token)
	if status != http.StatusBadRequest {
		t.Fatalf("bad id: %d", status)
	}
}

func TestClientDuplicateIsConflict(t *testing.T) {
	a := newTestAPI(t)
	status, _ := a.do(http.MethodPost, "/api/clients", gin.H{"name": "Acme", "email": "ops@acme.test"}, a.token)
	if status != http.StatusCreated {
		t.Fatalf("create: %d", status)
	}
	var before int64
	a.db.Model(&types.Client{}).Count(&before)

	status, env := a.do(http.MethodPost, "/api/clients", gin.H{"name": "Other", "email": " OPS@acme.test "}, a.token)
	if status != http.StatusBadRequest || env.Code != "conflict" {
		t.Fatalf("duplicate: %d %+v", status, env)
	}
	var after int64
	a.db.Model(&types.Client{}).Count(&after)
	if after != before {
		t.Fatalf("row count changed: %d -> %d", before, after)
	}
}

func TestTestCaseStepsAndResults(t *testing.T) {
	a := newTestAPI(t)
	project := testutil.SeedProject(t, context.Background(), a.db, a.user.ID, "Portal")

	status, env := a.do(http.MethodPost, "/api/test-cases", gin.H{
		"title":     "Login works",
		"projectId": project.ID,
		"steps":     "Open login page\n\n  Enter credentials  \nSubmit",
	}, a.token)
	if status != http.StatusCreated {
		t.Fatalf("create: %d %+v", status, env)
	}
	tc := decode[types.TestCase](t, env.Data)
	if len(tc.Steps) != 3 {
		t.Fatalf("steps = %+v", tc.Steps)
	}
	for i, s := range tc.Steps {
		if s.Step != i+1 {
			t.Fatalf("step %d numbered %d", i, s.Step)
		}
	}
	if tc.Steps[1].Description != "Enter credentials" {
		t.Fatalf("step not trimmed: %q", tc.Steps[1].Description)
	}

	executed := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	status, env = a.do(http.MethodPost, "/api/test-cases/"+tc.ID.String()+"/results", gin.H{
		"status":     "failed",
		"notes":      "button missing",
		"executedAt": executed,
	}, a.token)
	if status != http.StatusCreated {
		t.Fatalf("add result: %d %+v", status, env)
	}
	out := decode[struct {
		Result   types.TestResult `json:"result"`
		TestCase types.TestCase   `json:"testCase"`
	}](t, env.Data)
	if out.TestCase.Status != types.TestStatusFailed {
		t.Fatalf("parent status = %s", out.TestCase.Status)
	}
	if out.TestCase.LastRun == nil || !out.TestCase.LastRun.Equal(out.Result.ExecutedAt) || !out.Result.ExecutedAt.Equal(executed) {
		t.Fatalf("lastRun %v, executedAt %v", out.TestCase.LastRun, out.Result.ExecutedAt)
	}

	status, env = a.do(http.MethodPost, "/api/test-cases/"+tc.ID.String()+"/results", gin.H{"status": "exploded"}, a.token)
	if status != http.StatusBadRequest || env.Errors["status"] == "" {
		t.Fatalf("invalid result status: %d %+v", status, env)
	}
}

func TestUserStatusIsAdminOnly(t *testing.T) {
	a := newTestAPI(t)
	target := testutil.SeedUser(t, context.Background(), a.db, "target@example.com")
	path := "/api/users/" + target.ID.String() + "/status"

	status, _ := a.do(http.MethodPut, path, gin.H{"status": "suspended"}, a.token)
	if status != http.StatusForbidden {
		t.Fatalf("developer: %d", status)
	}

	admin := testutil.SeedUser(t, context.Background(), a.db, "admin@example.com")
	a.db.Model(&types.User{}).Where("id = ?", admin.ID).Update("role", types.RoleAdmin)
	adminToken, err := a.issuer.IssueAccessToken(admin.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	status, env := a.do(http.MethodPut, path, gin.H{"status": "suspended"}, adminToken)
	if status != http.StatusOK {
		t.Fatalf("admin: %d %+v", status, env)
	}
	if u := decode[types.User](t, env.Data); u.Status != types.UserStatusSuspended {
		t.Fatalf("status = %s", u.Status)
	}
}

func TestDocumentUploadFallsBackToLocalDisk(t *testing.T) {
	a := newTestAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("category", "spec")
	_ = mw.WriteField("tags", "api, Draft")
	fw, err := mw.CreateFormFile("file", "Release Notes.txt")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte("hello"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.token)
	status, env := a.serve(req)
	if status != http.StatusCreated {
		t.Fatalf("upload: %d %+v", status, env)
	}
	doc := decode[types.Document](t, env.Data)
	if doc.Title != "Release Notes" || doc.StorageBackend != types.StorageLocal {
		t.Fatalf("unexpected document %+v", doc)
	}
	if !strings.HasPrefix(doc.FileURL, "/uploads/") {
		t.Fatalf("fileUrl = %q", doc.FileURL)
	}
	rel := strings.TrimPrefix(doc.FileURL, "/uploads/")
	if raw, err := os.ReadFile(filepath.Join(a.uploads, filepath.FromSlash(rel))); err != nil || string(raw) != "hello" {
		t.Fatalf("stored file: %q %v", raw, err)
	}

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, doc.FileURL, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Fatalf("static serve: %d %q", rec.Code, rec.Body.String())
	}
}

func TestEndpointsListing(t *testing.T) {
	a := newTestAPI(t)
	status, env := a.do(http.MethodGet, "/api/endpoints", nil, "")
	if status != http.StatusOK {
		t.Fatalf("endpoints: %d", status)
	}
	l := decode[routes.Listing](t, env.Data)
	if l.Total == 0 || l.Total != len(l.Routes) {
		t.Fatalf("listing totals: %d vs %d", l.Total, len(l.Routes))
	}
	found := false
	for i, r := range l.Routes {
		if i > 0 {
			prev := l.Routes[i-1]
			if prev.Path > r.Path || (prev.Path == r.Path && prev.Method > r.Method) {
				t.Fatalf("routes not sorted at %d: %+v after %+v", i, r, prev)
			}
		}
		if r.Method == http.MethodPost && r.Path == "/api/clients" {
			found = r.Auth && r.Category == "clients"
		}
	}
	if !found {
		t.Fatalf("POST /api/clients missing or mislabelled")
	}
	if l.Categories["auth"] != 6 {
		t.Fatalf("auth routes = %d", l.Categories["auth"])
	}
}

func TestDatabaseSchema(t *testing.T) {
	a := newTestAPI(t)
	status, env := a.do(http.MethodGet, "/api/database/schema", nil, a.token)
	if status != http.StatusOK {
		t.Fatalf("schema: %d %+v", status, env)
	}
	if !strings.Contains(string(env.Data), `"client"`) {
		t.Fatalf("client table missing: %s", env.Data)
	}
}
