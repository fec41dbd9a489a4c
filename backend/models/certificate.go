package models

import (
	"time"

	"gorm.io/gorm"
)

type Certificate struct {
	gorm.Model
	Number        string    `gorm:"uniqueIndex;not null" json:"number"`
	UserID        string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_certificate_learner_course,priority:1" json:"user_id"`
	CourseID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_certificate_learner_course,priority:2" json:"course_id"`
	RecipientName string    `json:"recipient_name"`
	CourseTitle   string    `json:"course_title"`
	IssuedAt      time.Time `json:"issued_at"`
}

type ChatHistory struct {
	gorm.Model
	UserID   string `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Message  string `gorm:"type:text" json:"message"`
	Response string `gorm:"type:text" json:"response"`
}
