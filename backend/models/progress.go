package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserProgress is the stored form of a learner's progress in one course.
type UserProgress struct {
	gorm.Model
	UserID               string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_learner_course,priority:1"`
	CourseID             string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_learner_course,priority:2;index"`
	CompletedModules     datatypes.JSONSlice[string] `gorm:"not null"`
	QuizScores           datatypes.JSONMap           `gorm:"not null"`
	CompletionPercentage int                         `gorm:"default:0"`
	LastAccessed         time.Time                   `gorm:"index"`
	CompletedAt          *time.Time
}

type CourseProgress struct {
	CourseID             string    `json:"course_id"`
	Title                string    `json:"title"`
	CompletionPercentage int       `json:"completion_percentage"`
	State                string    `json:"state"`
	CompletedModules     int       `json:"completed_modules"`
	TotalModules         int       `json:"total_modules"`
	LastAccessed         time.Time `json:"last_accessed"`
}

type ProgressOverview struct {
	Courses          []CourseProgress `json:"courses"`
	CompletedCourses int              `json:"completed_courses"`
	CurrentStreak    int              `json:"current_streak"`
	LongestStreak    int              `json:"longest_streak"`
	LastActivityDate *time.Time       `json:"last_activity_date,omitempty"`
	Certificates     int64            `json:"certificates"`
}
