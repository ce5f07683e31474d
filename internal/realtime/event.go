package realtime

import (
	"context"

	"github.com/google/uuid"
)

type EventType string

const (
	EventClientCreated EventType = "client.created"
	EventClientUpdated EventType = "client.updated"
	EventClientDeleted EventType = "client.deleted"

	EventProjectCreated EventType = "project.created"
	EventProjectUpdated EventType = "project.updated"
	EventProjectDeleted EventType = "project.deleted"

	EventTestCaseCreated     EventType = "test_case.created"
	EventTestCaseUpdated     EventType = "test_case.updated"
	EventTestCaseDeleted     EventType = "test_case.deleted"
	EventTestCaseResultAdded EventType = "test_case.result_added"

	EventBugCreated       EventType = "bug.created"
	EventBugUpdated       EventType = "bug.updated"
	EventBugStatusChanged EventType = "bug.status_changed"
	EventBugDeleted       EventType = "bug.deleted"

	EventPerformanceTestCreated EventType = "performance_test.created"

	EventDeploymentCreated       EventType = "deployment.created"
	EventDeploymentStatusChanged EventType = "deployment.status_changed"

	EventDiscussionCreated EventType = "discussion.created"
	EventDiscussionReplied EventType = "discussion.replied"

	EventDocumentUploaded EventType = "document.uploaded"
	EventVersionReleased  EventType = "version.released"
	EventUIUXTaskUpdated  EventType = "uiux_task.updated"
)

// ChannelActivity is the global feed every stream subscribes to.
const ChannelActivity = "activity"

func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

type Event struct {
	Channel string    `json:"channel"`
	Type    EventType `json:"type"`
	Data    any       `json:"data,omitempty"`
}

// Publisher delivers events to live subscribers. Failures never roll back the
// write that produced the event.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Activity is shorthand for an event on the global activity channel.
func Activity(t EventType, data any) Event {
	return Event{Channel: ChannelActivity, Type: t, Data: data}
}
