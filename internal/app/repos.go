package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	Client          repos.ClientRepo
	Project         repos.ProjectRepo
	TestCase        repos.TestCaseRepo
	TestResult      repos.TestResultRepo
	Bug             repos.BugRepo
	PerformanceTest repos.PerformanceTestRepo
	Deployment      repos.DeploymentRepo
	UIUXTask        repos.UIUXTaskRepo
	VersionHistory  repos.VersionHistoryRepo
	Discussion      repos.DiscussionRepo
	DiscussionReply repos.DiscussionReplyRepo
	Document        repos.DocumentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		Client:          repos.NewClientRepo(db, log),
		Project:         repos.NewProjectRepo(db, log),
		TestCase:        repos.NewTestCaseRepo(db, log),
		TestResult:      repos.NewTestResultRepo(db, log),
		Bug:             repos.NewBugRepo(db, log),
		PerformanceTest: repos.NewPerformanceTestRepo(db, log),
		Deployment:      repos.NewDeploymentRepo(db, log),
		UIUXTask:        repos.NewUIUXTaskRepo(db, log),
		VersionHistory:  repos.NewVersionHistoryRepo(db, log),
		Discussion:      repos.NewDiscussionRepo(db, log),
		DiscussionReply: repos.NewDiscussionReplyRepo(db, log),
		Document:        repos.NewDocumentRepo(db, log),
	}
}
