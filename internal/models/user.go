package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RolePeer   = "peer"
	RoleMentor = "mentor"
	RoleAdmin  = "admin"
)

// User is a MindSpace member. Mentors are listed separately in the chat
// directory; admins can moderate the community feed.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Username    string         `gorm:"size:50;uniqueIndex" json:"username"`
	DisplayName string         `gorm:"size:100" json:"display_name"`
	PhotoURL    string         `gorm:"type:text" json:"photo_url,omitempty"`
	Password    string         `gorm:"not null" json:"-"`
	Role        string         `gorm:"size:20;default:'peer';index" json:"role"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Name is what other members see.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
