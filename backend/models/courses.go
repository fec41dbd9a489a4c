package models

import "gorm.io/datatypes"

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Course struct {
	Base
	Title         string   `gorm:"not null" json:"title"`
	Description   string   `json:"description"`
	Level         string   `gorm:"default:beginner" json:"level"` // beginner, intermediate, advanced
	Duration      string   `json:"duration"`
	IsWorkshop    bool     `gorm:"default:false" json:"is_workshop"`
	ImageURL      string   `json:"image_url"`
	PassThreshold int      `gorm:"default:70" json:"pass_threshold"`
	Modules       []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

type Module struct {
	Base
	CourseID   string `gorm:"type:varchar(36);index;not null" json:"course_id"`
	Title      string `gorm:"not null" json:"title"`
	Content    string `json:"content"`
	OrderIndex int    `gorm:"default:0" json:"order_index"`
	// Quiz holds [{"question": ..., "options": [...], "correctAnswer": n}] or null.
	Quiz datatypes.JSON `json:"quiz,omitempty"`
}

// QuizQuestion is one element of Module.Quiz as stored.
type QuizQuestion struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" validate:"gte=0"`
}
