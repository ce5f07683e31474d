package app

import (
	"github.com/yungbote/projectdesk-backend/internal/http/handlers"
	"github.com/yungbote/projectdesk-backend/internal/http/routes"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Client      *handlers.ClientHandler
	Project     *handlers.ProjectHandler
	TestCase    *handlers.TestCaseHandler
	Bug         *handlers.BugHandler
	Performance *handlers.PerformanceTestHandler
	Deployment  *handlers.DeploymentHandler
	UIUX        *handlers.UIUXTaskHandler
	Version     *handlers.VersionHistoryHandler
	Discussion  *handlers.DiscussionHandler
	Document    *handlers.DocumentHandler
	System      *handlers.SystemHandler
	Realtime    *handlers.RealtimeHandler
	Health      *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services, hub *realtime.Hub, manifest *routes.Manifest) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:        handlers.NewAuthHandler(log, services.Auth),
		User:        handlers.NewUserHandler(services.User),
		Client:      handlers.NewClientHandler(services.Client),
		Project:     handlers.NewProjectHandler(services.Project),
		TestCase:    handlers.NewTestCaseHandler(services.TestCase),
		Bug:         handlers.NewBugHandler(services.Bug),
		Performance: handlers.NewPerformanceTestHandler(services.PerformanceTest),
		Deployment:  handlers.NewDeploymentHandler(services.Deployment),
		UIUX:        handlers.NewUIUXTaskHandler(services.UIUXTask),
		Version:     handlers.NewVersionHistoryHandler(services.VersionHistory),
		Discussion:  handlers.NewDiscussionHandler(services.Discussion),
		Document:    handlers.NewDocumentHandler(log, services.Document),
		System:      handlers.NewSystemHandler(services.System, manifest),
		Realtime:    handlers.NewRealtimeHandler(log, hub),
		Health:      handlers.NewHealthHandler(),
	}
}
