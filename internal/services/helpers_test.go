package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/tokens"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

type recordingMailer struct {
	mu      sync.Mutex
	welcome []string
	changed []string
}

func (m *recordingMailer) SendWelcome(_ context.Context, u *types.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, u.Email)
}

func (m *recordingMailer) SendPasswordChanged(_ context.Context, u *types.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, u.Email)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) eventTypes() []realtime.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestIssuer(t *testing.T) *tokens.Issuer {
	t.Helper()
	iss, err := tokens.NewIssuer(tokens.Config{AccessSecret: "access-test", RefreshSecret: "refresh-test"})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func wantAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d/%s, got nil error", status, code)
	}
	ae := apierr.From(err)
	if ae.Status != status || ae.Code != code {
		t.Fatalf("error: want=%d/%s got=%d/%s (%v)", status, code, ae.Status, ae.Code, err)
	}
}

func apierrFields(err error) map[string]string {
	return apierr.From(err).Fields
}
