package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base replaces gorm.Model for rows addressed by uuid strings.
type Base struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Migrate creates or updates every table the platform uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&LoginHistory{},
		&LearnerStats{},
		&Course{},
		&Module{},
		&UserProgress{},
		&Certificate{},
		&ChatHistory{},
	)
}
