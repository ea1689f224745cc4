package models

import (
	"time"

	"github.com/google/uuid"
)

// Report kinds.
const (
	ReportUser    = "user"
	ReportPost    = "post"
	ReportComment = "comment"
	ReportMessage = "message"
)

// Report states.
const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportActioned  = "actioned"
	ReportDismissed = "dismissed"
)

func ValidReportKind(kind string) bool {
	switch kind {
	case ReportUser, ReportPost, ReportComment, ReportMessage:
		return true
	}
	return false
}

// Report is a member's complaint about a member, feed post, comment or chat
// message.
type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReporterID  uuid.UUID `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ContentType string    `gorm:"not null;size:50;index:idx_reports_content,priority:1" json:"content_type"`
	ContentID   string    `gorm:"not null;size:255;index:idx_reports_content,priority:2" json:"content_id"`
	Reason      string    `gorm:"not null;size:500" json:"reason"`
	Status      string    `gorm:"not null;default:'pending';size:50" json:"status"`
	AdminNote   string    `gorm:"size:1000" json:"admin_note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Reporter    User      `gorm:"foreignKey:ReporterID" json:"-"`
}
