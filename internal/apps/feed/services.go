package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrPostRejected    = errors.New("post rejected by content filter")
	ErrCommentRejected = errors.New("comment rejected by content filter")
	ErrEmptyPost       = errors.New("title and content are required")
	ErrEmptyComment    = errors.New("comment cannot be empty")
	ErrNotFlagged      = errors.New("post is not flagged")
)

const (
	maxTitleLen   = 200
	maxContentLen = 5000
)

// visible are the statuses members can see and interact with.
var visible = []string{StatusPending, StatusPublished}

// Moderator screens and reviews community content.
type Moderator interface {
	FilterContent(text string) (bool, string)
	GetRejectionMessage(reason string) string
	ReviewPost(ctx context.Context, title, content string) services.Verdict
	GetBlockedIDs(userID uuid.UUID) ([]uuid.UUID, error)
}

type PostService struct {
	db  *gorm.DB
	mod Moderator
	now func() time.Time
}

func NewPostService(db *gorm.DB, mod Moderator) *PostService {
	return &PostService{db: db, mod: mod, now: time.Now}
}

// RejectionError carries the member-facing reason a filter refused content.
type RejectionError struct {
	Err     error
	Message string
}

func (e *RejectionError) Error() string { return e.Message }
func (e *RejectionError) Unwrap() error { return e.Err }

func (s *PostService) Create(author session.Viewer, req CreatePostRequest) (*Post, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, ErrEmptyPost
	}
	if len(title) > maxTitleLen || len(content) > maxContentLen {
		return nil, fmt.Errorf("%w: too long", ErrEmptyPost)
	}
	if ok, reason := s.mod.FilterContent(title + "\n" + content); !ok {
		return nil, &RejectionError{Err: ErrPostRejected, Message: s.mod.GetRejectionMessage(reason)}
	}

	post := Post{
		ID:         uuid.New(),
		AuthorID:   author.UserID,
		AuthorName: author.DisplayName,
		Title:      title,
		Content:    content,
		Status:     StatusPending,
		LikedBy:    []string{},
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return &post, nil
}

// List returns the feed newest first. Pending posts are shown until a
// review flags them; posts by blocked members are hidden.
func (s *PostService) List(viewerID uuid.UUID, limit, offset int) (*FeedResponse, error) {
	q := s.db.Model(&Post{}).Where("status IN ?", visible)

	blocked, err := s.mod.GetBlockedIDs(viewerID)
	if err != nil {
		return nil, err
	}
	if len(blocked) > 0 {
		q = q.Where("author_id NOT IN ?", blocked)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []Post
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		return nil, err
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{Post: p, LikedByMe: slices.Contains(p.LikedBy, viewerID.String())}
	}
	return &FeedResponse{Posts: views, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *PostService) Get(postID uuid.UUID) (*Post, error) {
	var post Post
	if err := s.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ToggleLike adds or removes the viewer's like under a row lock. Flagged
// posts read as missing.
func (s *PostService) ToggleLike(viewerID, postID uuid.UUID) (*LikeResponse, error) {
	var resp LikeResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post Post
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status IN ?", visible).
			First(&post, "id = ?", postID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		likedBy, liked := toggle(post.LikedBy, viewerID.String())
		if err := tx.Model(&post).Updates(map[string]interface{}{
			"liked_by":   pq.StringArray(likedBy),
			"like_count": len(likedBy),
		}).Error; err != nil {
			return err
		}
		resp = LikeResponse{Liked: liked, LikeCount: len(likedBy)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *PostService) AddComment(author session.Viewer, postID uuid.UUID, req CreateCommentRequest) (*Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if ok, reason := s.mod.FilterContent(content); !ok {
		return nil, &RejectionError{Err: ErrCommentRejected, Message: s.mod.GetRejectionMessage(reason)}
	}

	comment := Comment{
		ID:         uuid.New(),
		PostID:     postID,
		AuthorID:   author.UserID,
		AuthorName: author.DisplayName,
		Content:    content,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Post{}).Where("id = ? AND status IN ?", postID, visible).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *PostService) ListComments(postID uuid.UUID) ([]Comment, error) {
	var comments []Comment
	err := s.db.Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// ReviewPending runs the AI reviewer over posts still awaiting review,
// oldest first.
func (s *PostService) ReviewPending(ctx context.Context, limit int) (*ReviewResult, error) {
	var pending []Post
	if err := s.db.Where("status = ?", StatusPending).Order("created_at ASC").Limit(limit).Find(&pending).Error; err != nil {
		return nil, err
	}

	result := &ReviewResult{}
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		post := &pending[i]
		verdict := s.mod.ReviewPost(ctx, post.Title, post.Content)
		if err := applyVerdict(post, verdict, s.now()); err != nil {
			return result, err
		}
		if err := s.db.Model(post).Select("status", "verdict", "reviewed_at").Updates(post).Error; err != nil {
			return result, fmt.Errorf("failed to store review for post %s: %w", post.ID, err)
		}

		result.Reviewed++
		if post.Status == StatusFlagged {
			result.Flagged++
			slog.Warn("post flagged", "component", "feed", "post_id", post.ID.String(), "reason", verdict.Reason, "severity", verdict.Severity)
		} else {
			result.Published++
		}
	}
	return result, nil
}

func (s *PostService) ListFlagged(limit, offset int) ([]Post, int64, error) {
	var posts []Post
	var total int64

	q := s.db.Model(&Post{}).Where("status = ?", StatusFlagged)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("reviewed_at DESC").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostService) DeleteFlagged(postID uuid.UUID) error {
	res := s.db.Where("id = ? AND status = ?", postID, StatusFlagged).Delete(&Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.flaggedMiss(postID)
	}
	return nil
}

// RestoreFlagged publishes a flagged post, keeping the reviewer's reason.
func (s *PostService) RestoreFlagged(postID uuid.UUID) (*Post, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	if post.Status != StatusFlagged {
		return nil, ErrNotFlagged
	}

	var v services.Verdict
	if len(post.Verdict) > 0 {
		_ = json.Unmarshal(post.Verdict, &v)
	}
	v.IsFlagged = false
	if err := applyVerdict(post, v, s.now()); err != nil {
		return nil, err
	}
	if err := s.db.Model(post).Select("status", "verdict", "reviewed_at").Updates(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// FlagReported moves a post members have reported into the flagged queue.
// Posts already flagged are left alone.
func (s *PostService) FlagReported(postID uuid.UUID, reason string) error {
	post, err := s.Get(postID)
	if err != nil {
		return err
	}
	if post.Status == StatusFlagged {
		return nil
	}
	if err := applyVerdict(post, services.Verdict{IsFlagged: true, Reason: reason, Severity: "Reported"}, s.now()); err != nil {
		return err
	}
	return s.db.Model(post).Select("status", "verdict", "reviewed_at").Updates(post).Error
}

func (s *PostService) flaggedMiss(postID uuid.UUID) error {
	if _, err := s.Get(postID); err != nil {
		return err
	}
	return ErrNotFlagged
}

func applyVerdict(post *Post, v services.Verdict, at time.Time) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	post.Verdict = datatypes.JSON(raw)
	post.ReviewedAt = &at
	post.Status = StatusPublished
	if v.IsFlagged {
		post.Status = StatusFlagged
	}
	return nil
}

// toggle removes id from list when present and appends it otherwise.
func toggle(list []string, id string) ([]string, bool) {
	out := make([]string, 0, len(list)+1)
	found := false
	for _, v := range list {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out, !found
}
