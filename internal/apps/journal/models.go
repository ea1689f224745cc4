package journal

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/mood"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one journal page. EntryDate is the calendar day the writer
// assigned it to, kept as YYYY-MM-DD so it never shifts across time zones.
type Entry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_journal_entries_user_date,priority:1" json:"user_id"`
	Title     string         `gorm:"size:200" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`
	Mood      string         `gorm:"size:20" json:"mood"`
	EntryDate string         `gorm:"size:10;index:idx_journal_entries_user_date,priority:2" json:"entry_date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Entry) TableName() string { return "journal_entries" }

// MoodSession is a quick mood check-in, separate from writing an entry.
type MoodSession struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Mood      string    `gorm:"size:20;not null" json:"mood"`
	Note      string    `gorm:"size:500" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (MoodSession) TableName() string { return "journal_mood_sessions" }

// WeeklySummary is the latest AI reflection on a member's past week.
type WeeklySummary struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Markdown    string    `gorm:"type:text" json:"-"`
	HTML        string    `gorm:"type:text" json:"summary_html"`
	EntryCount  int       `json:"entry_count"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (WeeklySummary) TableName() string { return "journal_weekly_summaries" }

// --- DTOs ---

type CreateEntryRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Mood      string `json:"mood"`
	EntryDate string `json:"entry_date"`
}

type UpdateEntryRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Mood      *string `json:"mood"`
	EntryDate *string `json:"entry_date"`
}

type CreateSessionRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

type EntryListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

type HeatmapResponse struct {
	Weeks       []activity.Week `json:"weeks"`
	MonthLabels []string        `json:"month_labels"`
	Stats       activity.Stats  `json:"stats"`
	Timezone    string          `json:"timezone"`
}

type StreakResponse struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type AnalyticsResponse struct {
	Moods        mood.Summary   `json:"moods"`
	Journal      StreakResponse `json:"journal_streak"`
	TotalEntries int            `json:"total_entries"`
}

type ShouldAskResponse struct {
	ShouldAsk bool       `json:"should_ask"`
	LastAt    *time.Time `json:"last_at,omitempty"`
}
