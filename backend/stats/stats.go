package stats

import (
	"context"
	"errors"
	"fmt"

	"academy/backend/models"
	"academy/backend/tracker"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Recorder keeps per-learner completion counts and daily streaks.
type Recorder struct {
	DB *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{DB: db}
}

// CourseCompleted implements tracker.Notifier.
func (r *Recorder) CourseCompleted(ctx context.Context, e tracker.CompletionEvent) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.LearnerStats
		err := tx.First(&st, "user_id = ?", e.LearnerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			st = models.LearnerStats{UserID: e.LearnerID}
		} else if err != nil {
			return fmt.Errorf("load learner stats: %w", err)
		}

		Apply(&st, e)
		if err := tx.Save(&st).Error; err != nil {
			return fmt.Errorf("save learner stats: %w", err)
		}
		return nil
	})
}

// Apply folds one completion into st. Completions on consecutive days extend the streak,
// several on the same day count once, and a gap resets it to 1.
func Apply(st *models.LearnerStats, e tracker.CompletionEvent) {
	st.CompletedCourses++

	day := now.With(e.CompletedAt).BeginningOfDay()
	switch {
	case st.LastActivityDate.IsZero():
		st.CurrentStreak = 1
	default:
		last := now.With(st.LastActivityDate.In(e.CompletedAt.Location())).BeginningOfDay()
		switch {
		case day.Equal(last):
			if st.CurrentStreak == 0 {
				st.CurrentStreak = 1
			}
		case day.Equal(last.AddDate(0, 0, 1)):
			st.CurrentStreak++
		case day.Before(last):
			// late event, leave the streak alone
			return
		default:
			st.CurrentStreak = 1
		}
	}
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	st.LastActivityDate = e.CompletedAt
}

// Get returns zero stats for learners who have not completed anything yet.
func (r *Recorder) Get(ctx context.Context, learnerID string) (*models.LearnerStats, error) {
	var st models.LearnerStats
	err := r.DB.WithContext(ctx).First(&st, "user_id = ?", learnerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.LearnerStats{UserID: learnerID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}
