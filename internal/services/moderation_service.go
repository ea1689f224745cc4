package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrInvalidReport  = errors.New("invalid report")
	ErrAlreadyBlocked = errors.New("user already blocked")
	ErrSelfBlock      = errors.New("cannot block yourself")
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
}

type ModerationService struct {
	db                  *gorm.DB
	llm                 TextGenerator
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	emailPattern        *regexp.Regexp
	phonePattern        *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	allCapsPattern      *regexp.Regexp
	compiled            bool
	mu                  sync.RWMutex
}

// NewModerationService builds the service. llm may be nil, in which case
// ReviewPost reports every post as a verification error.
func NewModerationService(db *gorm.DB, llm TextGenerator) *ModerationService {
	ms := &ModerationService{db: db, llm: llm}
	ms.compilePatterns()
	return ms
}

func (ms *ModerationService) compilePatterns() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.compiled {
		return
	}

	ms.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			ms.bannedWordRegexps = append(ms.bannedWordRegexps, re)
		}
	}

	ms.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	ms.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	ms.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	ms.repeatedCharPattern = regexp.MustCompile(`(?i)(a{4,}|b{4,}|c{4,}|d{4,}|e{4,}|f{4,}|g{4,}|h{4,}|i{4,}|j{4,}|k{4,}|l{4,}|m{4,}|n{4,}|o{4,}|p{4,}|q{4,}|r{4,}|s{4,}|t{4,}|u{4,}|v{4,}|w{4,}|x{4,}|y{4,}|z{4,}|!{4,}|\?{4,}|\.{4,})`)
	ms.allCapsPattern = regexp.MustCompile(`[A-Z]{5,}`)
	ms.compiled = true
}

func (ms *ModerationService) FilterContent(text string) (bool, string) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if text == "" {
		return true, ""
	}
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if ms.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if ms.emailPattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if ms.phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if ms.repeatedCharPattern.MatchString(text) {
		return false, "spam_detected"
	}
	capsMatches := ms.allCapsPattern.FindAllString(text, -1)
	if len(capsMatches) > 2 {
		return false, "excessive_caps"
	}
	return true, ""
}

func (ms *ModerationService) ContainsProfanity(text string) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (ms *ModerationService) GetRejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Your response contains inappropriate language.",
		"url_not_allowed":          "URLs and web links are not allowed.",
		"contact_info_not_allowed": "Contact information is not allowed.",
		"spam_detected":            "Your response appears to be spam.",
		"excessive_caps":           "Please avoid using excessive capital letters.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your response does not meet our content guidelines."
}

// CreateReport files a pending report. Member, post, comment and message
// reports must point at a UUID.
func (s *ModerationService) CreateReport(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	kind := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !models.ValidReportKind(kind) {
		return nil, fmt.Errorf("%w: content_type must be user, post, comment or message", ErrInvalidReport)
	}
	if _, err := uuid.Parse(req.ContentID); err != nil {
		return nil, fmt.Errorf("%w: content_id must be a UUID", ErrInvalidReport)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidReport)
	}
	if kind == models.ReportUser && req.ContentID == reporterID.String() {
		return nil, fmt.Errorf("%w: cannot report yourself", ErrInvalidReport)
	}

	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		ContentType: kind,
		ContentID:   req.ContentID,
		Reason:      reason,
		Status:      models.ReportPending,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

// PendingReports counts open reports against one piece of content.
func (s *ModerationService) PendingReports(contentType, contentID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.Report{}).
		Where("content_type = ? AND content_id = ? AND status = ?", contentType, contentID, models.ReportPending).
		Count(&n).Error
	return n, err
}

func (s *ModerationService) ListReports(status, contentType string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if contentType != "" {
		query = query.Where("content_type = ?", contentType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ActionReport records the admin decision and returns the updated report.
func (s *ModerationService) ActionReport(reportID uuid.UUID, req *dto.ActionReportRequest) (*models.Report, error) {
	switch req.Status {
	case models.ReportReviewed, models.ReportActioned, models.ReportDismissed:
	default:
		return nil, fmt.Errorf("%w: status must be reviewed, actioned or dismissed", ErrInvalidReport)
	}

	var report models.Report
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		report.Status = req.Status
		report.AdminNote = req.AdminNote
		return tx.Model(&report).Select("status", "admin_note").Updates(&report).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ModerationService) BlockUser(blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	var existing models.Block
	if err := s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).First(&existing).Error; err == nil {
		return ErrAlreadyBlocked
	}

	block := models.Block{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
	return s.db.Create(&block).Error
}

func (s *ModerationService) UnblockUser(blockerID, blockedID uuid.UUID) error {
	return s.db.
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

// GetBlockedIDs returns everyone userID has blocked or been blocked by.
// Either direction hides content both ways.
func (s *ModerationService) GetBlockedIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var blocks []models.Block
	if err := s.db.Where("blocker_id = ? OR blocked_id = ?", userID, userID).Find(&blocks).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(blocks))
	for _, b := range blocks {
		if b.BlockerID == userID {
			ids = append(ids, b.BlockedID)
		} else {
			ids = append(ids, b.BlockerID)
		}
	}
	return ids, nil
}

// BlockedBy returns the users userID has blocked.
func (s *ModerationService) BlockedBy(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.Block{}).Where("blocker_id = ?", userID).Pluck("blocked_id", &ids).Error
	return ids, err
}

// IsBlocked reports whether either user has blocked the other.
func (s *ModerationService) IsBlocked(a, b uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// Verdict is the AI reviewer's judgement of a community post.
type Verdict struct {
	IsFlagged bool   `json:"isFlagged"`
	Reason    string `json:"reason"`
	Severity  string `json:"severity"`
}

// VerificationError is recorded when the reviewer cannot be reached or
// answers with something unreadable. Such posts are held back for a human.
var VerificationError = Verdict{IsFlagged: true, Reason: "Verification Error", Severity: "Unknown"}

var (
	reviewReasons    = map[string]bool{"Hate Speech": true, "Harassment": true, "Spam": true, "Self-Harm": true, "Misinformation": true, "None": true}
	reviewSeverities = map[string]bool{"Low": true, "Medium": true, "High": true, "None": true}
)

const reviewPrompt = `You are a content moderation assistant for a mental health app called MindSpace. ` +
	`Analyze the following post and determine if it violates community guidelines (Hate Speech, Harassment, Spam, Self-Harm, Misinformation). ` +
	`Your response MUST be a single, valid JSON object with the following structure: ` +
	`{"isFlagged": boolean, "reason": "string", "severity": "string"}. ` +
	`"isFlagged" should be true if it violates any guideline. ` +
	`"reason" should be one of: "Hate Speech", "Harassment", "Spam", "Self-Harm", "Misinformation", or "None". ` +
	`"severity" should be one of: "Low", "Medium", "High", or "None".`

// ReviewPost asks the AI reviewer whether a post breaks community guidelines.
// It never returns an error: failures produce VerificationError.
func (ms *ModerationService) ReviewPost(ctx context.Context, title, content string) Verdict {
	if ms.llm == nil {
		return VerificationError
	}

	reply, err := ms.llm.Complete(ctx, CompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: reviewPrompt},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\nContent: %s", title, content)},
		},
		Temperature: 0,
		MaxTokens:   200,
	})
	if err != nil {
		slog.Error("post review failed", "component", "moderation", "error", err)
		return VerificationError
	}

	var v Verdict
	if err := json.Unmarshal([]byte(StripCodeFence(reply)), &v); err != nil {
		slog.Error("post review unreadable", "component", "moderation", "error", err, "reply", truncate(reply, 200))
		return VerificationError
	}
	if !reviewReasons[v.Reason] {
		v.Reason = "None"
		if v.IsFlagged {
			v.Reason = "Other"
		}
	}
	if !reviewSeverities[v.Severity] {
		v.Severity = "None"
		if v.IsFlagged {
			v.Severity = "Unknown"
		}
	}
	return v
}
