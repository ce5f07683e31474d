package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
)

func TestDiscussionRepliesAndOwnership(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	svc := NewDiscussionService(db, log, repos.NewDiscussionRepo(db, log), repos.NewDiscussionReplyRepo(db, log), userRepo, &recordingPublisher{})
	author := testutil.SeedUser(t, ctx, db, "author@example.com")
	other := testutil.SeedUser(t, ctx, db, "other@example.com")

	long := strings.Repeat("word ", 60)
	d, err := svc.Create(ctx, author.ID, DiscussionInput{
		Title:   strPtr("Release process"),
		Content: strPtr(long),
		Tags:    []string{"Release", " release ", "ops"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasSuffix(d.Excerpt, "...") || len([]rune(d.Excerpt)) > 153 {
		t.Fatalf("excerpt: %q", d.Excerpt)
	}
	if len(d.Tags) != 2 || d.AuthorName != "Test User" || d.Category != "general" {
		t.Fatalf("discussion: %+v", d)
	}

	for _, body := range []string{"first", "second"} {
		if _, err := svc.Reply(ctx, other.ID, d.ID, body); err != nil {
			t.Fatalf("Reply: %v", err)
		}
	}
	_, err = svc.Reply(ctx, other.ID, d.ID, "  ")
	wantAPIError(t, err, http.StatusBadRequest, "validation_failed")

	thread, err := svc.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if thread.ReplyCount != 2 || len(thread.Replies) != 2 || thread.Replies[0].Content != "first" {
		t.Fatalf("thread: count=%d replies=%d", thread.ReplyCount, len(thread.Replies))
	}

	_, err = svc.Update(ctx, other.ID, d.ID, DiscussionInput{Title: strPtr("hijack")})
	wantAPIError(t, err, http.StatusForbidden, "not_author")
	err = svc.Delete(ctx, other.ID, d.ID)
	wantAPIError(t, err, http.StatusForbidden, "not_author")

	updated, err := svc.Update(ctx, author.ID, d.ID, DiscussionInput{Content: strPtr("short  now"), Pinned: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Excerpt != "short now" || !updated.Pinned {
		t.Fatalf("update: %+v", updated)
	}

	if err := svc.Delete(ctx, author.ID, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := countRows(t, db, &types.DiscussionReply{}); n != 0 {
		t.Fatalf("replies left: %d", n)
	}
}

func boolPtr(b bool) *bool { return &b }
