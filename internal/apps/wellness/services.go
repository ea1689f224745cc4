package wellness

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/breathing"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/mood"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidCycles = errors.New("cycles must be between 1 and 100")

const MaxCycles = 100

type BreathingService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBreathingService(db *gorm.DB) *BreathingService {
	return &BreathingService{db: db, now: time.Now}
}

// Timeline precomputes the phases of an exercise.
func Timeline(exerciseID string, cycles int) (*TimelineResponse, error) {
	if cycles < 1 || cycles > MaxCycles {
		return nil, ErrInvalidCycles
	}
	ex, err := breathing.Lookup(exerciseID)
	if err != nil {
		return nil, err
	}
	steps, err := breathing.Timeline(ex, cycles)
	if err != nil {
		return nil, err
	}
	return &TimelineResponse{
		Exercise: ex,
		Cycles:   cycles,
		Total:    time.Duration(cycles) * ex.Pattern.CycleLength(),
		Steps:    steps,
	}, nil
}

func (s *BreathingService) Log(userID uuid.UUID, req LogRequest) (*BreathingLog, error) {
	ex, err := breathing.Lookup(req.ExerciseID)
	if err != nil {
		return nil, err
	}
	if req.Cycles < 1 || req.Cycles > MaxCycles {
		return nil, ErrInvalidCycles
	}

	seconds := req.DurationSeconds
	if seconds <= 0 {
		seconds = int((time.Duration(req.Cycles) * ex.Pattern.CycleLength()).Seconds())
	}

	entry := BreathingLog{
		ID:              uuid.New(),
		UserID:          userID,
		ExerciseID:      ex.ID,
		Cycles:          req.Cycles,
		DurationSeconds: seconds,
		CompletedAt:     s.now().UTC(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to log breathing session: %w", err)
	}
	return &entry, nil
}

func (s *BreathingService) History(userID uuid.UUID, limit, offset int) (*HistoryResponse, error) {
	var logs []BreathingLog
	var total int64

	q := s.db.Model(&BreathingLog{}).Scopes(session.OwnedBy(userID))
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	if err := q.Order("completed_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, err
	}
	return &HistoryResponse{Logs: logs, Total: total}, nil
}

func (s *BreathingService) Overview(userID uuid.UUID, loc *time.Location) (*OverviewResponse, error) {
	var logs []BreathingLog
	if err := s.db.Scopes(session.OwnedBy(userID)).Order("completed_at ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return summarize(logs, calendar.DateOf(s.now(), loc), loc), nil
}

// summarize reuses the daily streak rules of mood tracking: practice today or
// yesterday keeps a streak alive.
func summarize(logs []BreathingLog, today calendar.Date, loc *time.Location) *OverviewResponse {
	out := &OverviewResponse{Sessions: len(logs)}

	days := make([]mood.Entry, len(logs))
	counts := map[string]int{}
	seconds := 0
	for i, l := range logs {
		days[i] = mood.Entry{OccurredAt: calendar.At(l.CompletedAt)}
		counts[l.ExerciseID]++
		seconds += l.DurationSeconds
	}
	out.TotalMinutes = seconds / 60
	out.CurrentStreak = mood.DailyStreak(days, today, loc)
	out.LongestStreak = mood.LongestStreak(days, loc)

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > 0 {
		out.Favorite = ids[0]
	}
	return out
}
