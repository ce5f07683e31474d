package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	apphttp "github.com/yungbote/projectdesk-backend/internal/http"
	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/http/routes"
	"github.com/yungbote/projectdesk-backend/internal/observability"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Hub      *realtime.Hub
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	startedAt := time.Now().UTC()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	response.ExposeErrorDetail(!cfg.IsProduction())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	theDB, err := db.Open(cfg.DB, log)
	if err != nil {
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.Migrate(ctx, theDB, log, db.MigrateOptions{SeedSampleData: cfg.SeedSampleData}); err != nil {
		_ = db.Close(theDB)
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = db.Close(theDB)
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, err
	}

	metrics := observability.NewMetrics()
	hub := realtime.NewHub(log)
	pub := livePublisher(hub, clients, metrics)

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, startedAt, reposet, clients, pub)
	if err != nil {
		clients.close(log)
		_ = db.Close(theDB)
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, err
	}

	manifest := routes.NewManifest()
	handlerset := wireHandlers(log, serviceset, hub, manifest)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, manifest, metrics)

	log.Info("Application wired",
		"env", cfg.AppEnv,
		"db_driver", cfg.DB.Driver,
		"routes", len(manifest.Routes()),
		"redis", clients.Redis != nil,
		"gcs", clients.Bucket != nil,
	)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Hub:          hub,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

func wireRouter(
	log *logger.Logger,
	cfg Config,
	handlers Handlers,
	middleware Middleware,
	manifest *routes.Manifest,
	metrics *observability.Metrics,
) *gin.Engine {
	log.Info("Wiring router...")
	rc := apphttp.RouterConfig{
		Log:                log,
		ServiceName:        cfg.Otel.ServiceName,
		AllowedOrigins:     cfg.AllowedOrigins,
		UploadDir:          cfg.UploadDir,
		Manifest:           manifest,
		AuthMiddleware:     middleware.Auth,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		ClientHandler:      handlers.Client,
		ProjectHandler:     handlers.Project,
		TestCaseHandler:    handlers.TestCase,
		BugHandler:         handlers.Bug,
		PerformanceHandler: handlers.Performance,
		DeploymentHandler:  handlers.Deployment,
		DiscussionHandler:  handlers.Discussion,
		DocumentHandler:    handlers.Document,
		VersionHandler:     handlers.Version,
		UIUXHandler:        handlers.UIUX,
		SystemHandler:      handlers.System,
		RealtimeHandler:    handlers.Realtime,
		HealthHandler:      handlers.Health,
	}
	if cfg.MetricsEnabled {
		rc.Metrics = metrics
	}
	return apphttp.NewRouter(rc)
}

// Start launches background work: the Redis forwarder into the local hub and
// the DB pool collector.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Redis != nil {
		if err := a.Clients.Redis.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
			cancel()
			a.cancel = nil
			return fmt.Errorf("start redis forwarder: %w", err)
		}
		a.Log.Info("Redis forwarder started", "channel", a.Cfg.RedisChannel)
	}
	if a.Cfg.MetricsEnabled && a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	}
	return nil
}

func (a *App) Addr() string {
	return net.JoinHostPort("", a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	a.Clients.close(a.Log)
	if a.DB != nil {
		if err := db.Close(a.DB); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
		a.DB = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
