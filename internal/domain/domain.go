package domain

import (
	"github.com/yungbote/projectdesk-backend/internal/domain/clients"
	"github.com/yungbote/projectdesk-backend/internal/domain/content"
	"github.com/yungbote/projectdesk-backend/internal/domain/delivery"
	"github.com/yungbote/projectdesk-backend/internal/domain/projects"
	"github.com/yungbote/projectdesk-backend/internal/domain/qa"
	"github.com/yungbote/projectdesk-backend/internal/domain/system"
	"github.com/yungbote/projectdesk-backend/internal/domain/user"
)

const (
	RoleAdmin     = user.RoleAdmin
	RoleManager   = user.RoleManager
	RoleDeveloper = user.RoleDeveloper
	RoleTester    = user.RoleTester
	RoleDesigner  = user.RoleDesigner
	RoleClient    = user.RoleClient

	UserStatusActive    = user.StatusActive
	UserStatusInactive  = user.StatusInactive
	UserStatusSuspended = user.StatusSuspended

	ClientStatusActive   = clients.StatusActive
	ClientStatusInactive = clients.StatusInactive
	ClientStatusProspect = clients.StatusProspect
	DefaultClientLogo    = clients.DefaultLogo

	TestStatusNotRun  = qa.TestStatusNotRun
	TestStatusPassed  = qa.TestStatusPassed
	TestStatusFailed  = qa.TestStatusFailed
	TestStatusBlocked = qa.TestStatusBlocked

	BugStatusOpen       = qa.BugStatusOpen
	BugStatusInProgress = qa.BugStatusInProgress
	BugStatusResolved   = qa.BugStatusResolved
	BugStatusClosed     = qa.BugStatusClosed
	BugStatusReopened   = qa.BugStatusReopened

	PerfStatusPassed  = qa.PerfStatusPassed
	PerfStatusWarning = qa.PerfStatusWarning
	PerfStatusFailed  = qa.PerfStatusFailed

	DeployPending    = delivery.DeployPending
	DeployInProgress = delivery.DeployInProgress
	DeploySucceeded  = delivery.DeploySucceeded
	DeployFailed     = delivery.DeployFailed
	DeployRolledBack = delivery.DeployRolledBack

	StorageGCS   = content.StorageGCS
	StorageLocal = content.StorageLocal
	StorageNone  = content.StorageNone
)

type User = user.User
type Client = clients.Client
type Project = projects.Project

type TestCase = qa.TestCase
type TestStep = qa.TestStep
type TestResult = qa.TestResult
type Bug = qa.Bug
type PerformanceTest = qa.PerformanceTest
type PerformanceMetrics = qa.PerformanceMetrics

type Deployment = delivery.Deployment
type UIUXTask = delivery.UIUXTask
type VersionHistory = delivery.VersionHistory

type Discussion = content.Discussion
type DiscussionReply = content.DiscussionReply
type Document = content.Document

type SchemaMigration = system.SchemaMigration

// AllModels lists every table owned by the migration runner, in creation order.
func AllModels() []any {
	return []any{
		&User{},
		&Client{},
		&Project{},
		&TestCase{},
		&TestResult{},
		&Bug{},
		&PerformanceTest{},
		&Deployment{},
		&UIUXTask{},
		&VersionHistory{},
		&Discussion{},
		&DiscussionReply{},
		&Document{},
	}
}
