package services

import (
	"context"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (fe fieldErrors) add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

func (fe fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		fe.add(field, field+" is required")
	}
}

func (fe fieldErrors) oneOf(field, value string, allowed []string) {
	if value != "" && !slices.Contains(allowed, value) {
		fe.add(field, field+" must be one of: "+strings.Join(allowed, ", "))
	}
}

func (fe fieldErrors) email(field, value string) {
	if value == "" {
		return
	}
	if !validEmail(value) {
		fe.add(field, "invalid email address")
	}
}

func (fe fieldErrors) maxLen(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		fe.add(field, field+" is too long")
	}
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return apierr.Validation(fe)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// publish sends ev best-effort; delivery failures are logged, never returned.
func publish(ctx context.Context, log *logger.Logger, pub realtime.Publisher, ev realtime.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn("Failed to publish live event", "type", ev.Type, "channel", ev.Channel, "error", err)
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func trim(s string) string { return strings.TrimSpace(s) }

// optionalID applies a nullable id patch: nil keeps cur, uuid.Nil clears it.
func optionalID(cur *uuid.UUID, patch *uuid.UUID) *uuid.UUID {
	if patch == nil {
		return cur
	}
	if *patch == uuid.Nil {
		return nil
	}
	id := *patch
	return &id
}
