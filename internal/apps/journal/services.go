package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/mood"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound   = errors.New("journal entry not found")
	ErrInvalidMood     = errors.New("invalid mood")
	ErrInvalidDate     = errors.New("entry_date must be YYYY-MM-DD")
	ErrFutureDate      = errors.New("entry_date cannot be in the future")
	ErrEmptyEntry      = errors.New("title or content is required")
	ErrContentRejected = errors.New("content does not meet community guidelines")
)

// CheckInInterval is how long after a mood check-in the prompt stays quiet.
const CheckInInterval = 24 * time.Hour

// RecentMoods is how many check-ins the dashboard lists.
const RecentMoods = 7

// ContentFilter screens text before it is stored.
type ContentFilter interface {
	FilterContent(text string) (bool, string)
}

type JournalService struct {
	db     *gorm.DB
	filter ContentFilter
	now    func() time.Time
}

func NewJournalService(db *gorm.DB, filter ContentFilter) *JournalService {
	return &JournalService{db: db, filter: filter, now: time.Now}
}

func (s *JournalService) CreateEntry(userID uuid.UUID, loc *time.Location, req CreateEntryRequest) (*Entry, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" && content == "" {
		return nil, ErrEmptyEntry
	}

	label, err := parseMood(req.Mood, mood.JournalMoods)
	if err != nil {
		return nil, err
	}

	today := calendar.DateOf(s.now(), loc)
	day := today
	if req.EntryDate != "" {
		if day, err = s.validDate(req.EntryDate, today); err != nil {
			return nil, err
		}
	}

	entry := Entry{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Mood:      string(label),
		EntryDate: day.String(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}
	return &entry, nil
}

func (s *JournalService) GetEntry(userID, entryID uuid.UUID) (*Entry, error) {
	var entry Entry
	if err := s.db.Scopes(session.OwnedBy(userID)).First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *JournalService) ListEntries(userID uuid.UUID, limit, offset int) (*EntryListResponse, error) {
	var entries []Entry
	var total int64

	q := s.db.Model(&Entry{}).Scopes(session.OwnedBy(userID))
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	if err := q.Order("entry_date DESC, created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, err
	}
	return &EntryListResponse{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *JournalService) UpdateEntry(userID, entryID uuid.UUID, loc *time.Location, req UpdateEntryRequest) (*Entry, error) {
	entry, err := s.GetEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates["content"] = strings.TrimSpace(*req.Content)
	}
	if req.Mood != nil {
		label, err := parseMood(*req.Mood, mood.JournalMoods)
		if err != nil {
			return nil, err
		}
		updates["mood"] = string(label)
	}
	if req.EntryDate != nil {
		day, err := s.validDate(*req.EntryDate, calendar.DateOf(s.now(), loc))
		if err != nil {
			return nil, err
		}
		updates["entry_date"] = day.String()
	}
	if len(updates) == 0 {
		return entry, nil
	}

	if err := s.db.Model(entry).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	return s.GetEntry(userID, entryID)
}

func (s *JournalService) DeleteEntry(userID, entryID uuid.UUID) error {
	result := s.db.Scopes(session.OwnedBy(userID)).Delete(&Entry{}, "id = ?", entryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// RecordSession stores a mood check-in. Neutral is accepted and means the
// member chose not to say.
func (s *JournalService) RecordSession(userID uuid.UUID, req CreateSessionRequest) (*MoodSession, error) {
	label, ok := mood.SessionMoods.Parse(req.Mood)
	if !ok {
		return nil, ErrInvalidMood
	}
	if s.filter != nil && req.Note != "" {
		if ok, _ := s.filter.FilterContent(req.Note); !ok {
			return nil, ErrContentRejected
		}
	}

	ms := MoodSession{
		ID:     uuid.New(),
		UserID: userID,
		Mood:   string(label),
		Note:   strings.TrimSpace(req.Note),
	}
	if err := s.db.Create(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to record mood session: %w", err)
	}
	return &ms, nil
}

func (s *JournalService) ListSessions(userID uuid.UUID) ([]MoodSession, error) {
	var sessions []MoodSession
	err := s.db.Scopes(session.OwnedBy(userID)).Order("created_at ASC").Find(&sessions).Error
	return sessions, err
}

// ShouldAsk reports whether the check-in prompt should be shown.
func (s *JournalService) ShouldAsk(userID uuid.UUID) (*ShouldAskResponse, error) {
	var last MoodSession
	err := s.db.Scopes(session.OwnedBy(userID)).Order("created_at DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ShouldAskResponse{ShouldAsk: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ShouldAskResponse{
		ShouldAsk: needsCheckIn(last.CreatedAt, s.now()),
		LastAt:    &last.CreatedAt,
	}, nil
}

func (s *JournalService) Heatmap(userID uuid.UUID, loc *time.Location) (*HeatmapResponse, error) {
	entries, err := s.allEntries(userID)
	if err != nil {
		return nil, err
	}

	weeks := activity.BuildGrid(entryMoods(entries), calendar.DateOf(s.now(), loc), loc)
	return &HeatmapResponse{
		Weeks:       weeks,
		MonthLabels: activity.MonthLabels(weeks),
		Stats:       activity.StatsOf(weeks),
		Timezone:    loc.String(),
	}, nil
}

func (s *JournalService) Analytics(userID uuid.UUID, loc *time.Location) (*AnalyticsResponse, error) {
	entries, err := s.allEntries(userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.ListSessions(userID)
	if err != nil {
		return nil, err
	}

	today := calendar.DateOf(s.now(), loc)
	days := entryMoods(entries)
	return &AnalyticsResponse{
		Moods: mood.Summarize(sessionMoods(sessions), today, loc, mood.SessionMoods, RecentMoods),
		Journal: StreakResponse{
			Current: mood.DailyStreak(days, today, loc),
			Longest: mood.LongestStreak(days, loc),
		},
		TotalEntries: len(entries),
	}, nil
}

// EntriesBetween returns entries whose day falls in [from, to].
func (s *JournalService) EntriesBetween(userID uuid.UUID, from, to calendar.Date) ([]Entry, error) {
	var entries []Entry
	err := s.db.Scopes(session.OwnedBy(userID)).
		Where("entry_date >= ? AND entry_date <= ?", from.String(), to.String()).
		Order("entry_date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (s *JournalService) allEntries(userID uuid.UUID) ([]Entry, error) {
	var entries []Entry
	err := s.db.Scopes(session.OwnedBy(userID)).Order("entry_date ASC, created_at ASC").Find(&entries).Error
	return entries, err
}

func (s *JournalService) validDate(raw string, today calendar.Date) (calendar.Date, error) {
	d, err := calendar.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return calendar.Date{}, ErrInvalidDate
	}
	if d.After(today) {
		return calendar.Date{}, ErrFutureDate
	}
	return d, nil
}

func parseMood(raw string, allowed mood.Set) (mood.Label, error) {
	if strings.TrimSpace(raw) == "" {
		return mood.Neutral, nil
	}
	label, ok := allowed.Parse(raw)
	if !ok {
		return "", ErrInvalidMood
	}
	return label, nil
}

func needsCheckIn(last, now time.Time) bool {
	return now.Sub(last) > CheckInInterval
}

// entryMoods converts stored entries for the analytics core. An entry with an
// unreadable EntryDate becomes an invalid timestamp and is skipped there.
func entryMoods(entries []Entry) []mood.Entry {
	out := make([]mood.Entry, len(entries))
	for i, e := range entries {
		ts := calendar.At(e.CreatedAt)
		if e.EntryDate != "" {
			ts = calendar.ParseTimestamp(e.EntryDate)
		}
		out[i] = mood.Entry{OccurredAt: ts, Mood: mood.Label(e.Mood)}
	}
	return out
}

func sessionMoods(sessions []MoodSession) []mood.Entry {
	out := make([]mood.Entry, len(sessions))
	for i, s := range sessions {
		out[i] = mood.NewEntry(s.CreatedAt, s.Mood)
	}
	return out
}
