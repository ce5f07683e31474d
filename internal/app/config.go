package app

import (
	"time"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
	"github.com/yungbote/projectdesk-backend/internal/http/middleware"
	"github.com/yungbote/projectdesk-backend/internal/observability"
	"github.com/yungbote/projectdesk-backend/internal/platform/envutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/gcp"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/platform/sendgrid"
)

const (
	serviceName    = "projectdesk-backend"
	defaultVersion = "1.0.0"
)

type Config struct {
	AppEnv  string
	Version string
	Port    string

	DB       db.Config
	Storage  gcp.Config
	SendGrid sendgrid.Config
	Otel     observability.OtelConfig

	JWTSecretKey        string
	JWTRefreshSecretKey string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration

	UploadDir      string
	RedisAddr      string
	RedisChannel   string
	CodeStatsRoot  string
	AllowedOrigins []string
	SeedSampleData bool
	MetricsEnabled bool
}

func (c Config) IsProduction() bool { return c.AppEnv == "production" }

func LoadConfig(log *logger.Logger) Config {
	appEnv := envutil.String("APP_ENV", "development", log)
	version := envutil.String("APP_VERSION", defaultVersion, log)
	return Config{
		AppEnv:   appEnv,
		Version:  version,
		Port:     envutil.String("PORT", "8080", log),
		DB:       db.ConfigFromEnv(log),
		Storage:  gcp.ConfigFromEnv(log),
		SendGrid: sendgrid.ConfigFromEnv(log),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", serviceName, log),
			Environment: appEnv,
			Version:     version,
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1, log),
		},
		JWTSecretKey:        envutil.String("JWT_SECRET_KEY", "", log),
		JWTRefreshSecretKey: envutil.String("JWT_REFRESH_SECRET_KEY", "", log),
		AccessTokenTTL:      envutil.Duration("ACCESS_TOKEN_TTL", 7*24*time.Hour, log),
		RefreshTokenTTL:     envutil.Duration("REFRESH_TOKEN_TTL", 30*24*time.Hour, log),
		UploadDir:           envutil.String("UPLOAD_DIR", "./uploads", log),
		RedisAddr:           envutil.String("REDIS_ADDR", "", log),
		RedisChannel:        envutil.String("REDIS_CHANNEL", "projectdesk:events", log),
		CodeStatsRoot:       envutil.String("CODE_STATS_ROOT", ".", log),
		AllowedOrigins:      envutil.List("CORS_ALLOWED_ORIGINS", middleware.DefaultAllowedOrigins, log),
		SeedSampleData:      envutil.Bool("SEED_SAMPLE_DATA", false, log),
		MetricsEnabled:      envutil.Bool("METRICS_ENABLED", true, log),
	}
}
