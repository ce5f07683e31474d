package content

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const ExcerptLength = 150

type Discussion struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string                      `gorm:"not null;column:title" json:"title"`
	Content    string                      `gorm:"not null;column:content;type:text" json:"content"`
	Excerpt    string                      `gorm:"column:excerpt" json:"excerpt"`
	Category   string                      `gorm:"not null;column:category;default:general;index" json:"category"`
	Tags       datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	AuthorID   *uuid.UUID                  `gorm:"type:uuid;column:author_id;index" json:"authorId,omitempty"`
	AuthorName string                      `gorm:"column:author_name" json:"authorName"`
	Pinned     bool                        `gorm:"not null;column:pinned;default:false" json:"pinned"`
	ReplyCount int                         `gorm:"not null;column:reply_count;default:0" json:"replyCount"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Discussion) TableName() string { return "discussion" }

type DiscussionReply struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DiscussionID uuid.UUID  `gorm:"type:uuid;not null;column:discussion_id;index" json:"discussionId"`
	AuthorID     *uuid.UUID `gorm:"type:uuid;column:author_id" json:"authorId,omitempty"`
	AuthorName   string     `gorm:"column:author_name" json:"authorName"`
	Content      string     `gorm:"not null;column:content;type:text" json:"content"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (DiscussionReply) TableName() string { return "discussion_reply" }

// Excerpt collapses whitespace and truncates to ExcerptLength runes, appending "..." when cut.
func Excerpt(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(s) <= ExcerptLength {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "..."
}
