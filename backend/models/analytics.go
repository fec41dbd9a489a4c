package models

import "time"

type CourseAnalytics struct {
	CourseID          string             `json:"course_id"`
	Title             string             `json:"title"`
	Modules           int                `json:"modules"`
	Enrolled          int                `json:"enrolled"`
	Completed         int                `json:"completed"`
	AverageCompletion float64            `json:"average_completion"`
	AverageQuizScore  map[string]float64 `json:"average_quiz_score"`
	Learners          []LearnerProgress  `json:"learners"`
}

type LearnerProgress struct {
	UserID               string    `json:"user_id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	CompletionPercentage int       `json:"completion_percentage"`
	LastAccessed         time.Time `json:"last_accessed"`
}
