package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/projectdesk-backend/internal/domain"
	httpH "github.com/yungbote/projectdesk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/projectdesk-backend/internal/http/middleware"
	"github.com/yungbote/projectdesk-backend/internal/http/routes"
	"github.com/yungbote/projectdesk-backend/internal/observability"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	// UploadDir is served at /uploads when set.
	UploadDir string
	Manifest  *routes.Manifest
	// Metrics, when set, instruments requests and serves /metrics.
	Metrics *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	ClientHandler      *httpH.ClientHandler
	ProjectHandler     *httpH.ProjectHandler
	TestCaseHandler    *httpH.TestCaseHandler
	BugHandler         *httpH.BugHandler
	PerformanceHandler *httpH.PerformanceTestHandler
	DeploymentHandler  *httpH.DeploymentHandler
	DiscussionHandler  *httpH.DiscussionHandler
	DocumentHandler    *httpH.DocumentHandler
	VersionHandler     *httpH.VersionHistoryHandler
	UIUXHandler        *httpH.UIUXTaskHandler
	SystemHandler      *httpH.SystemHandler
	RealtimeHandler    *httpH.RealtimeHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Manifest == nil {
		cfg.Manifest = routes.NewManifest()
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "projectdesk-backend"
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		cfg.Log.Error("Panic recovered", "path", c.Request.URL.Path, "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error", "code": "internal_error"})
	}))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}
	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir)
	}

	api := routes.NewRegistrar(cfg.Manifest, r.Group("/api"))
	// Without an auth middleware (tests wiring a single handler) protected routes stay open.
	authed := func(h ...gin.HandlerFunc) []gin.HandlerFunc { return h }
	var adminOnly []gin.HandlerFunc
	if am := cfg.AuthMiddleware; am != nil {
		authed = func(h ...gin.HandlerFunc) []gin.HandlerFunc {
			return append([]gin.HandlerFunc{am.RequireAuth()}, h...)
		}
		adminOnly = []gin.HandlerFunc{am.RequireRole(types.RoleAdmin)}
	}

	// Auth
	if h := cfg.AuthHandler; h != nil {
		g := api.Group("/auth")
		g.POST("/register", "auth", false, "Register a new account", h.Register)
		g.POST("/login", "auth", false, "Log in with email and password", h.Login)
		g.POST("/refresh-token", "auth", false, "Exchange a refresh token for a new token pair", h.Refresh)
		g.GET("/me", "auth", true, "Current user", authed(h.Me)...)
		g.PUT("/password", "auth", true, "Change the current user's password", authed(h.UpdatePassword)...)
		g.POST("/logout", "auth", true, "Log out", authed(h.Logout)...)
	}

	// Users
	if h := cfg.UserHandler; h != nil {
		api.GET("/users", "users", true, "List users", authed(h.List)...)
		api.GET("/users/:id", "users", true, "Get a user", authed(h.Get)...)
		api.PUT("/users/:id/status", "users", true, "Set a user's status (admin)", authed(append(adminOnly, h.SetStatus)...)...)
	}

	// Clients
	if h := cfg.ClientHandler; h != nil {
		api.GET("/clients", "clients", true, "List clients", authed(h.List)...)
		api.GET("/clients/search", "clients", true, "Search clients", authed(h.Search)...)
		api.GET("/clients/:id", "clients", true, "Get a client", authed(h.Get)...)
		api.POST("/clients", "clients", true, "Create a client", authed(h.Create)...)
		api.PUT("/clients/:id", "clients", true, "Update a client", authed(h.Update)...)
		api.DELETE("/clients/:id", "clients", true, "Delete a client", authed(h.Delete)...)
	}

	// Projects
	if h := cfg.ProjectHandler; h != nil {
		api.GET("/projects", "projects", true, "List projects", authed(h.List)...)
		api.GET("/projects/:id", "projects", true, "Get a project with counts", authed(h.Get)...)
		api.POST("/projects", "projects", true, "Create a project", authed(h.Create)...)
		api.PUT("/projects/:id", "projects", true, "Update a project", authed(h.Update)...)
		api.DELETE("/projects/:id", "projects", true, "Delete a project", authed(h.Delete)...)
	}

	// Testing
	if h := cfg.TestCaseHandler; h != nil {
		api.GET("/test-cases", "testing", true, "List test cases", authed(h.List)...)
		api.GET("/test-cases/:id", "testing", true, "Get a test case with recent results", authed(h.Get)...)
		api.POST("/test-cases", "testing", true, "Create a test case", authed(h.Create)...)
		api.PUT("/test-cases/:id", "testing", true, "Update a test case", authed(h.Update)...)
		api.DELETE("/test-cases/:id", "testing", true, "Delete a test case and its results", authed(h.Delete)...)
		api.POST("/test-cases/:id/results", "testing", true, "Record a test execution", authed(h.AddResult)...)
		api.GET("/test-cases/:id/results", "testing", true, "Execution history", authed(h.Results)...)
		api.GET("/testing/suites", "testing", true, "Test cases grouped by project", authed(h.Suites)...)
		api.GET("/testing/dashboard-stats", "testing", true, "Testing dashboard statistics", authed(h.DashboardStats)...)
		api.GET("/testing/self-test", "testing", true, "Self-test checklist", authed(h.SelfTest)...)
	}

	// Bugs
	if h := cfg.BugHandler; h != nil {
		api.GET("/bugs", "bugs", true, "List bugs", authed(h.List)...)
		api.GET("/bugs/stats", "bugs", true, "Bug counts by status and severity", authed(h.Stats)...)
		api.GET("/bugs/:id", "bugs", true, "Get a bug", authed(h.Get)...)
		api.POST("/bugs", "bugs", true, "Report a bug", authed(h.Create)...)
		api.PUT("/bugs/:id", "bugs", true, "Update a bug", authed(h.Update)...)
		api.PATCH("/bugs/:id/status", "bugs", true, "Change a bug's status", authed(h.SetStatus)...)
		api.DELETE("/bugs/:id", "bugs", true, "Delete a bug", authed(h.Delete)...)
	}

	// Performance
	if h := cfg.PerformanceHandler; h != nil {
		api.GET("/performance-tests", "performance", true, "List performance tests", authed(h.List)...)
		api.GET("/performance-tests/:id", "performance", true, "Get a performance test", authed(h.Get)...)
		api.POST("/performance-tests", "performance", true, "Record or simulate a performance test", authed(h.Create)...)
		api.DELETE("/performance-tests/:id", "performance", true, "Delete a performance test", authed(h.Delete)...)
	}

	// Deployments
	if h := cfg.DeploymentHandler; h != nil {
		api.GET("/deployments", "deployments", true, "List deployments", authed(h.List)...)
		api.GET("/deployments/:id", "deployments", true, "Get a deployment", authed(h.Get)...)
		api.POST("/deployments", "deployments", true, "Create a deployment", authed(h.Create)...)
		api.PUT("/deployments/:id", "deployments", true, "Update a deployment", authed(h.Update)...)
		api.PATCH("/deployments/:id/status", "deployments", true, "Move a deployment through its lifecycle", authed(h.Transition)...)
		api.DELETE("/deployments/:id", "deployments", true, "Delete a deployment", authed(h.Delete)...)
	}

	// Discussions
	if h := cfg.DiscussionHandler; h != nil {
		api.GET("/discussions", "discussions", true, "List discussions", authed(h.List)...)
		api.GET("/discussions/:id", "discussions", true, "Get a discussion with replies", authed(h.Get)...)
		api.POST("/discussions", "discussions", true, "Start a discussion", authed(h.Create)...)
		api.PUT("/discussions/:id", "discussions", true, "Edit a discussion", authed(h.Update)...)
		api.DELETE("/discussions/:id", "discussions", true, "Delete a discussion", authed(h.Delete)...)
		api.GET("/discussions/:id/replies", "discussions", true, "List replies", authed(h.Replies)...)
		api.POST("/discussions/:id/replies", "discussions", true, "Reply to a discussion", authed(h.Reply)...)
	}

	// Documents
	if h := cfg.DocumentHandler; h != nil {
		api.GET("/documents", "documents", true, "List documents", authed(h.List)...)
		api.GET("/documents/:id", "documents", true, "Get a document", authed(h.Get)...)
		api.POST("/documents", "documents", true, "Upload or register a document", authed(h.Create)...)
		api.PUT("/documents/:id", "documents", true, "Update document metadata", authed(h.Update)...)
		api.DELETE("/documents/:id", "documents", true, "Delete a document", authed(h.Delete)...)
	}

	// Version history
	if h := cfg.VersionHandler; h != nil {
		api.GET("/version-history", "versions", true, "List releases", authed(h.List)...)
		api.GET("/version-history/latest", "versions", true, "Latest release", authed(h.Latest)...)
		api.GET("/version-history/:id", "versions", true, "Get a release", authed(h.Get)...)
		api.POST("/version-history", "versions", true, "Record a release", authed(h.Create)...)
		api.PUT("/version-history/:id", "versions", true, "Update a release", authed(h.Update)...)
		api.DELETE("/version-history/:id", "versions", true, "Delete a release", authed(h.Delete)...)
	}

	// UI/UX
	if h := cfg.UIUXHandler; h != nil {
		api.GET("/uiux-tasks", "uiux", true, "List UI/UX tasks", authed(h.List)...)
		api.GET("/uiux-tasks/:id", "uiux", true, "Get a UI/UX task", authed(h.Get)...)
		api.POST("/uiux-tasks", "uiux", true, "Create a UI/UX task", authed(h.Create)...)
		api.PUT("/uiux-tasks/:id", "uiux", true, "Update a UI/UX task", authed(h.Update)...)
		api.DELETE("/uiux-tasks/:id", "uiux", true, "Delete a UI/UX task", authed(h.Delete)...)
	}

	// System
	if h := cfg.SystemHandler; h != nil {
		api.GET("/endpoints", "system", false, "List every API endpoint", h.Endpoints)
		api.GET("/environment", "system", true, "Runtime environment", authed(h.Environment)...)
		api.GET("/integrations/status", "system", true, "Integration credential status", authed(h.Integrations)...)
		api.GET("/coding/stats", "system", true, "Source tree metrics", authed(h.CodingStats)...)
		api.GET("/database/schema", "system", true, "Database tables and columns", authed(h.DatabaseSchema)...)
	}

	// Realtime (SSE)
	if h := cfg.RealtimeHandler; h != nil {
		api.GET("/events/stream", "realtime", true, "Live event stream (token query allowed)", authed(h.Stream)...)
	}

	return r
}
