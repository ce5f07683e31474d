package content

import (
	"context"
	"testing"

	"github.com/yungbote/projectdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
)

func TestDiscussionRepoOrderingAndReplies(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	discussions := NewDiscussionRepo(db, log)
	replies := NewDiscussionReplyRepo(db, log)

	u := testutil.SeedUser(t, ctx, tx, "author@example.com")
	plain, err := discussions.Create(ctx, tx, &types.Discussion{Title: "plain", Content: "body", AuthorID: &u.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pinned, err := discussions.Create(ctx, tx, &types.Discussion{Title: "pinned", Content: "body", Pinned: true, AuthorID: &u.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, total, err := discussions.List(ctx, tx, DiscussionFilter{})
	if err != nil || total != 2 {
		t.Fatalf("List: %v total=%d", err, total)
	}
	if rows[0].ID != pinned.ID || rows[1].ID != plain.ID {
		t.Fatalf("pinned discussion must come first")
	}
	if rows[0].Category != "general" {
		t.Fatalf("default category: %q", rows[0].Category)
	}

	for i := 0; i < 2; i++ {
		if _, err := replies.Create(ctx, tx, &types.DiscussionReply{DiscussionID: plain.ID, AuthorID: &u.ID, Content: "reply"}); err != nil {
			t.Fatalf("reply: %v", err)
		}
		if err := discussions.IncrementReplyCount(ctx, tx, plain.ID, 1); err != nil {
			t.Fatalf("IncrementReplyCount: %v", err)
		}
	}
	got, err := discussions.GetByID(ctx, tx, plain.ID)
	if err != nil || got.ReplyCount != 2 {
		t.Fatalf("reply count: %v %+v", err, got)
	}
	list, err := replies.ListByDiscussion(ctx, tx, plain.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByDiscussion: %v len=%d", err, len(list))
	}
}

func TestDocumentRepoSearch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewDocumentRepo(db, testutil.Logger(t))

	if _, err := repo.Create(ctx, tx, &types.Document{Title: "Runbook", Category: "operations", FileName: "deploy.md"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, tx, &types.Document{Title: "Strategy", Category: "testing"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, total, err := repo.List(ctx, tx, DocumentFilter{Search: "DEPLOY"})
	if err != nil || total != 1 {
		t.Fatalf("search by file name: %v total=%d", err, total)
	}
	_, total, err = repo.List(ctx, tx, DocumentFilter{Category: "testing"})
	if err != nil || total != 1 {
		t.Fatalf("category filter: %v total=%d", err, total)
	}
}
