package services

import (
	"context"
	"fmt"
	"time"

	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/platform/sendgrid"
)

type Mailer interface {
	SendWelcome(ctx context.Context, user *types.User)
	SendPasswordChanged(ctx context.Context, user *types.User)
}

type mailer struct {
	log    *logger.Logger
	client sendgrid.Client
}

// NewMailer returns a mailer that only logs when client is nil.
func NewMailer(log *logger.Logger, client sendgrid.Client) Mailer {
	return &mailer{log: log.With("service", "Mailer"), client: client}
}

func (m *mailer) SendWelcome(ctx context.Context, user *types.User) {
	m.send(ctx, user, "Welcome to ProjectDesk", fmt.Sprintf(
		"Hi %s,\n\nYour ProjectDesk account is ready. Sign in with %s to get started.\n",
		user.Name, user.Email,
	), "welcome")
}

func (m *mailer) SendPasswordChanged(ctx context.Context, user *types.User) {
	m.send(ctx, user, "Your ProjectDesk password was changed", fmt.Sprintf(
		"Hi %s,\n\nThe password for your account was changed at %s. If this was not you, contact an administrator.\n",
		user.Name, time.Now().UTC().Format(time.RFC1123),
	), "password_changed")
}

// send runs detached from the request so a finished response does not cancel delivery.
func (m *mailer) send(ctx context.Context, user *types.User, subject, text, category string) {
	if m.client == nil {
		m.log.Debug("Email delivery disabled, skipping", "category", category, "user_id", user.ID)
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(detached, 30*time.Second)
		defer cancel()
		_, err := m.client.Send(sendCtx, sendgrid.SendEmailRequest{
			To:         []sendgrid.EmailAddress{{Email: user.Email, Name: user.Name}},
			Subject:    subject,
			Text:       text,
			Categories: []string{category},
		})
		if err != nil {
			m.log.Warn("Email delivery failed", "category", category, "user_id", user.ID, "error", err)
		}
	}()
}
