package feed

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post review states.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFlagged   = "flagged"
)

type Post struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	AuthorName   string         `gorm:"size:100" json:"author_name"`
	Title        string         `gorm:"size:200;not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Status       string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	LikedBy      pq.StringArray `gorm:"type:text[];default:'{}'" json:"-"`
	LikeCount    int            `gorm:"default:0" json:"like_count"`
	CommentCount int            `gorm:"default:0" json:"comment_count"`
	Verdict      datatypes.JSON `gorm:"type:jsonb" json:"verdict,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Post) TableName() string { return "feed_posts" }

type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PostID     uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	AuthorName string    `gorm:"size:100" json:"author_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Comment) TableName() string { return "feed_comments" }

// --- DTOs ---

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

// PostView is a post as seen by one viewer.
type PostView struct {
	Post
	LikedByMe bool `json:"liked_by_me"`
}

type FeedResponse struct {
	Posts  []PostView `json:"posts"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type ReviewResult struct {
	Reviewed  int `json:"reviewed"`
	Published int `json:"published"`
	Flagged   int `json:"flagged"`
}
