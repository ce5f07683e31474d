package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/observability"
	"github.com/yungbote/projectdesk-backend/internal/platform/envutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/gcp"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/platform/tokens"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type Services struct {
	Auth            services.AuthService
	User            services.UserService
	Client          services.ClientService
	Project         services.ProjectService
	TestCase        services.TestCaseService
	Bug             services.BugService
	PerformanceTest services.PerformanceTestService
	Deployment      services.DeploymentService
	UIUXTask        services.UIUXTaskService
	VersionHistory  services.VersionHistoryService
	Discussion      services.DiscussionService
	Document        services.DocumentService
	System          services.SystemService
	Mailer          services.Mailer
}

func wireServices(
	theDB *gorm.DB,
	log *logger.Logger,
	cfg Config,
	startedAt time.Time,
	reposet Repos,
	clients Clients,
	pub realtime.Publisher,
) (Services, error) {
	log.Info("Wiring services...")

	issuer, err := newIssuer(log, cfg)
	if err != nil {
		return Services{}, err
	}
	mailer := services.NewMailer(log, clients.SendGrid)

	return Services{
		Auth:   services.NewAuthService(theDB, log, reposet.User, issuer, mailer),
		User:   services.NewUserService(theDB, log, reposet.User),
		Client: services.NewClientService(theDB, log, reposet.Client, pub),
		Project: services.NewProjectService(
			theDB, log, reposet.Project, reposet.Client, reposet.TestCase, reposet.Bug, pub,
		),
		TestCase: services.NewTestCaseService(
			theDB, log,
			reposet.TestCase, reposet.TestResult, reposet.Project, reposet.Bug, reposet.Client, reposet.User,
			pub,
		),
		Bug:             services.NewBugService(theDB, log, reposet.Bug, pub),
		PerformanceTest: services.NewPerformanceTestService(log, reposet.PerformanceTest, pub),
		Deployment:      services.NewDeploymentService(theDB, log, reposet.Deployment, pub),
		UIUXTask:        services.NewUIUXTaskService(theDB, log, reposet.UIUXTask, pub),
		VersionHistory:  services.NewVersionHistoryService(theDB, log, reposet.VersionHistory, pub),
		Discussion: services.NewDiscussionService(
			theDB, log, reposet.Discussion, reposet.DiscussionReply, reposet.User, pub,
		),
		Document: services.NewDocumentService(theDB, log, reposet.Document, clients.Files, pub),
		System: services.NewSystemService(theDB, log, services.SystemConfig{
			AppEnv:        cfg.AppEnv,
			Version:       cfg.Version,
			DBDriver:      cfg.DB.Driver,
			CodeStatsRoot: cfg.CodeStatsRoot,
			StartedAt:     startedAt,
			Integrations:  integrationProbes(cfg, clients),
			Models:        db.Models(),
		}),
		Mailer: mailer,
	}, nil
}

// newIssuer requires both JWT secrets in production. Elsewhere missing secrets
// are replaced with random ones, so tokens do not survive a restart.
func newIssuer(log *logger.Logger, cfg Config) (*tokens.Issuer, error) {
	access, refresh := cfg.JWTSecretKey, cfg.JWTRefreshSecretKey
	if access == "" || refresh == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY are required in production")
		}
		log.Warn("JWT secrets not set, generating ephemeral secrets")
		if access == "" {
			access = randomSecret()
		}
		if refresh == "" {
			refresh = randomSecret()
		}
	}
	issuer, err := tokens.NewIssuer(tokens.Config{
		AccessSecret:  access,
		RefreshSecret: refresh,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init token issuer: %w", err)
	}
	return issuer, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// integrationProbes reads credential presence at call time; clients are fixed at startup.
func integrationProbes(cfg Config, clients Clients) func() []services.IntegrationProbe {
	return func() []services.IntegrationProbe {
		database := map[string]bool{"SQLITE_PATH": envutil.Present("SQLITE_PATH")}
		if cfg.DB.Driver != db.DriverSQLite {
			database = map[string]bool{
				"POSTGRES_HOST":     envutil.Present("POSTGRES_HOST"),
				"POSTGRES_USER":     envutil.Present("POSTGRES_USER"),
				"POSTGRES_PASSWORD": envutil.Present("POSTGRES_PASSWORD"),
				"POSTGRES_NAME":     envutil.Present("POSTGRES_NAME"),
			}
		}
		return []services.IntegrationProbe{
			{Name: "database", Credentials: database, Initialized: true},
			{
				Name: "object_storage",
				Credentials: map[string]bool{
					"GCS_BUCKET_NAME":                envutil.Present("GCS_BUCKET_NAME"),
					"GOOGLE_APPLICATION_CREDENTIALS": gcp.HasCredentials(),
				},
				Initialized: clients.Bucket != nil,
			},
			{
				Name:        "redis",
				Credentials: map[string]bool{"REDIS_ADDR": envutil.Present("REDIS_ADDR")},
				Initialized: clients.Redis != nil,
			},
			{
				Name: "email",
				Credentials: map[string]bool{
					"SENDGRID_API_KEY":    envutil.Present("SENDGRID_API_KEY"),
					"SENDGRID_FROM_EMAIL": envutil.Present("SENDGRID_FROM_EMAIL"),
				},
				Initialized: clients.SendGrid != nil,
			},
			{
				Name: "tracing",
				Credentials: map[string]bool{
					"OTEL_ENABLED":                envutil.Present("OTEL_ENABLED"),
					"OTEL_EXPORTER_OTLP_ENDPOINT": envutil.Present("OTEL_EXPORTER_OTLP_ENDPOINT"),
				},
				Initialized: cfg.Otel.Enabled,
			},
			{
				Name: "jwt",
				Credentials: map[string]bool{
					"JWT_SECRET_KEY":         envutil.Present("JWT_SECRET_KEY"),
					"JWT_REFRESH_SECRET_KEY": envutil.Present("JWT_REFRESH_SECRET_KEY"),
				},
				Initialized: true,
			},
		}
	}
}

// livePublisher sends through Redis when configured so every instance's hub
// receives the event; otherwise it publishes straight to the local hub.
func livePublisher(hub *realtime.Hub, clients Clients, metrics *observability.Metrics) realtime.Publisher {
	var base realtime.Publisher = hub
	if clients.Redis != nil {
		base = clients.Redis
	}
	return observability.InstrumentPublisher(base, metrics)
}
