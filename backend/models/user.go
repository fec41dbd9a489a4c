package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleLearner = "learner"
	RoleAdmin   = "admin"
)

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AvatarURL    string `json:"avatar_url"`
	Role         string `gorm:"default:learner" json:"role"`
}

// DisplayName is the name printed on certificates and used by the assistant.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type LoginHistory struct {
	gorm.Model
	UserID    string `gorm:"index;not null"`
	LoginTime time.Time
	IP        string
}

// LearnerStats is updated every time a learner finishes a course.
type LearnerStats struct {
	UserID           string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	CompletedCourses int       `gorm:"default:0" json:"completed_courses"`
	CurrentStreak    int       `gorm:"default:0" json:"current_streak"`
	LongestStreak    int       `gorm:"default:0" json:"longest_streak"`
	LastActivityDate time.Time `json:"last_activity_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}
