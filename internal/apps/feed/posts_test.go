package feed

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, dbMock
}

func TestToggleLike_AddsViewerUnderLock(t *testing.T) {
	db, dbMock := setupMockDB(t)
	viewer, other, postID := uuid.New(), uuid.New(), uuid.New()

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`SELECT \* FROM "feed_posts" WHERE status IN \(\$1,\$2\) AND id = \$3 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "liked_by", "like_count"}).
			AddRow(postID.String(), StatusPublished, "{"+other.String()+"}", 1))
	dbMock.ExpectExec(`UPDATE "feed_posts" SET .*"like_count"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	resp, err := NewPostService(db, new(mockModerator)).ToggleLike(viewer, postID)

	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Equal(t, 2, resp.LikeCount)
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestToggleLike_SecondToggleRemovesLike(t *testing.T) {
	db, dbMock := setupMockDB(t)
	viewer, postID := uuid.New(), uuid.New()

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`SELECT \* FROM "feed_posts" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "liked_by", "like_count"}).
			AddRow(postID.String(), StatusPending, "{"+viewer.String()+"}", 1))
	dbMock.ExpectExec(`UPDATE "feed_posts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	resp, err := NewPostService(db, new(mockModerator)).ToggleLike(viewer, postID)

	require.NoError(t, err)
	assert.False(t, resp.Liked)
	assert.Equal(t, 0, resp.LikeCount)
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestToggleLike_FlaggedPostReadsAsMissing(t *testing.T) {
	db, dbMock := setupMockDB(t)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`SELECT \* FROM "feed_posts" WHERE status IN \(\$1,\$2\) AND id = \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	dbMock.ExpectRollback()

	_, err := NewPostService(db, new(mockModerator)).ToggleLike(uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrPostNotFound)
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAddComment_FlaggedPostReadsAsMissing(t *testing.T) {
	db, dbMock := setupMockDB(t)
	mod := new(mockModerator)
	mod.On("FilterContent", "hang in there").Return(true, "")

	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "feed_posts" SET "comment_count"=comment_count \+ 1 WHERE \(id = \$1 AND status IN \(\$2,\$3\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectRollback()

	_, err := NewPostService(db, mod).AddComment(session.Viewer{UserID: uuid.New()}, uuid.New(), CreateCommentRequest{Content: "hang in there"})

	assert.ErrorIs(t, err, ErrPostNotFound)
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestReviewPending_StoresEachVerdict(t *testing.T) {
	db, dbMock := setupMockDB(t)
	mod := new(mockModerator)
	calm, harsh := uuid.New(), uuid.New()
	mod.On("ReviewPost", "Good day", "Went for a walk").Return(services.Verdict{Reason: "None", Severity: "None"})
	mod.On("ReviewPost", "Bad day", "something hateful").Return(services.Verdict{IsFlagged: true, Reason: "Hate", Severity: "High"})

	dbMock.ExpectQuery(`SELECT \* FROM "feed_posts" WHERE status = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "status"}).
			AddRow(calm.String(), "Good day", "Went for a walk", StatusPending).
			AddRow(harsh.String(), "Bad day", "something hateful", StatusPending))
	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "feed_posts" SET "status"=\$1,"verdict"=\$2,"reviewed_at"=\$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()
	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "feed_posts" SET "status"=\$1,"verdict"=\$2,"reviewed_at"=\$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	svc := NewPostService(db, mod)
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }
	result, err := svc.ReviewPending(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, &ReviewResult{Reviewed: 2, Published: 1, Flagged: 1}, result)
	require.NoError(t, dbMock.ExpectationsWereMet())
	mod.AssertExpectations(t)
}

func TestFlagReported_MovesPostToFlaggedQueue(t *testing.T) {
	db, dbMock := setupMockDB(t)
	postID := uuid.New()

	dbMock.ExpectQuery(`SELECT \* FROM "feed_posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(postID.String(), StatusPublished))
	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "feed_posts" SET "status"=\$1,"verdict"=\$2,"reviewed_at"=\$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	require.NoError(t, NewPostService(db, new(mockModerator)).FlagReported(postID, "Reported by members"))
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestFlagReported_AlreadyFlaggedIsLeftAlone(t *testing.T) {
	db, dbMock := setupMockDB(t)
	postID := uuid.New()

	dbMock.ExpectQuery(`SELECT \* FROM "feed_posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(postID.String(), StatusFlagged))

	require.NoError(t, NewPostService(db, new(mockModerator)).FlagReported(postID, "Reported by members"))
	require.NoError(t, dbMock.ExpectationsWereMet())
}
