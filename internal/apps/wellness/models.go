package wellness

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/breathing"
	"github.com/google/uuid"
)

// BreathingLog records one finished breathing practice.
type BreathingLog struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_breathing_logs_user_completed,priority:1" json:"user_id"`
	ExerciseID      string    `gorm:"size:40;not null" json:"exercise_id"`
	Cycles          int       `gorm:"not null" json:"cycles"`
	DurationSeconds int       `gorm:"not null" json:"duration_seconds"`
	CompletedAt     time.Time `gorm:"not null;index:idx_breathing_logs_user_completed,priority:2" json:"completed_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (BreathingLog) TableName() string { return "wellness_breathing_logs" }

// --- DTOs ---

type LogRequest struct {
	ExerciseID string `json:"exercise_id"`
	Cycles     int    `json:"cycles"`
	// DurationSeconds defaults to cycles times the exercise's cycle length.
	DurationSeconds int `json:"duration_seconds"`
}

type TimelineResponse struct {
	Exercise breathing.Exercise `json:"exercise"`
	Cycles   int                `json:"cycles"`
	Total    time.Duration      `json:"total"`
	Steps    []breathing.Step   `json:"steps"`
}

type HistoryResponse struct {
	Logs  []BreathingLog `json:"logs"`
	Total int64          `json:"total"`
}

type OverviewResponse struct {
	Sessions      int    `json:"sessions"`
	TotalMinutes  int    `json:"total_minutes"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	Favorite      string `json:"favorite_exercise,omitempty"`
}
