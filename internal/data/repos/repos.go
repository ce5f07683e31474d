package repos

import (
	"github.com/yungbote/projectdesk-backend/internal/data/repos/clients"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/content"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/delivery"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/projects"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/qa"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/user"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type ClientRepo = clients.ClientRepo
type ProjectRepo = projects.ProjectRepo

type TestCaseRepo = qa.TestCaseRepo
type TestResultRepo = qa.TestResultRepo
type BugRepo = qa.BugRepo
type PerformanceTestRepo = qa.PerformanceTestRepo

type DeploymentRepo = delivery.DeploymentRepo
type UIUXTaskRepo = delivery.UIUXTaskRepo
type VersionHistoryRepo = delivery.VersionHistoryRepo

type DiscussionRepo = content.DiscussionRepo
type DiscussionReplyRepo = content.DiscussionReplyRepo
type DocumentRepo = content.DocumentRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewClientRepo(db *gorm.DB, baseLog *logger.Logger) ClientRepo {
	return clients.NewClientRepo(db, baseLog)
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return projects.NewProjectRepo(db, baseLog)
}

func NewTestCaseRepo(db *gorm.DB, baseLog *logger.Logger) TestCaseRepo {
	return qa.NewTestCaseRepo(db, baseLog)
}

func NewTestResultRepo(db *gorm.DB, baseLog *logger.Logger) TestResultRepo {
	return qa.NewTestResultRepo(db, baseLog)
}

func NewBugRepo(db *gorm.DB, baseLog *logger.Logger) BugRepo {
	return qa.NewBugRepo(db, baseLog)
}

func NewPerformanceTestRepo(db *gorm.DB, baseLog *logger.Logger) PerformanceTestRepo {
	return qa.NewPerformanceTestRepo(db, baseLog)
}

func NewDeploymentRepo(db *gorm.DB, baseLog *logger.Logger) DeploymentRepo {
	return delivery.NewDeploymentRepo(db, baseLog)
}

func NewUIUXTaskRepo(db *gorm.DB, baseLog *logger.Logger) UIUXTaskRepo {
	return delivery.NewUIUXTaskRepo(db, baseLog)
}

func NewVersionHistoryRepo(db *gorm.DB, baseLog *logger.Logger) VersionHistoryRepo {
	return delivery.NewVersionHistoryRepo(db, baseLog)
}

func NewDiscussionRepo(db *gorm.DB, baseLog *logger.Logger) DiscussionRepo {
	return content.NewDiscussionRepo(db, baseLog)
}

func NewDiscussionReplyRepo(db *gorm.DB, baseLog *logger.Logger) DiscussionReplyRepo {
	return content.NewDiscussionReplyRepo(db, baseLog)
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return content.NewDocumentRepo(db, baseLog)
}

type UserFilter = user.ListFilter
type ClientFilter = clients.ListFilter
type ProjectFilter = projects.ListFilter
type TestCaseFilter = qa.TestCaseFilter
type BugFilter = qa.BugFilter
type PerformanceFilter = qa.PerformanceFilter
type ProjectTally = qa.ProjectTally
type DeploymentFilter = delivery.DeploymentFilter
type UIUXTaskFilter = delivery.UIUXTaskFilter
type VersionFilter = delivery.VersionFilter
type DiscussionFilter = content.DiscussionFilter
type DocumentFilter = content.DocumentFilter
