package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"academy/backend/models"
	"academy/backend/tracker"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrMalformedProgress = fmt.Errorf("malformed progress row: %w", tracker.ErrCorruptRecord)

// ProgressStore persists tracker records in the user_progresses table, one row per (learner, course).
type ProgressStore struct {
	DB *gorm.DB
}

func NewProgressStore(db *gorm.DB) *ProgressStore {
	return &ProgressStore{DB: db}
}

func (s *ProgressStore) Load(ctx context.Context, learnerID, courseID string) (*tracker.ProgressRecord, error) {
	var row models.UserProgress
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", learnerID, courseID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracker.ErrNoProgress
	}
	if err != nil {
		return nil, err
	}
	return ToRecord(&row)
}

func (s *ProgressStore) Save(ctx context.Context, record *tracker.ProgressRecord) error {
	row := FromRecord(record)
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completed_modules", "quiz_scores", "completion_percentage", "last_accessed", "completed_at", "updated_at", "deleted_at",
		}),
	}).Create(row).Error
}

func (s *ProgressStore) ListByLearner(ctx context.Context, learnerID string) ([]*tracker.ProgressRecord, error) {
	var rows []models.UserProgress
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", learnerID).
		Order("last_accessed DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecords(rows)
}

func (s *ProgressStore) ListByCourse(ctx context.Context, courseID string) ([]*tracker.ProgressRecord, error) {
	var rows []models.UserProgress
	if err := s.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("completion_percentage DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecords(rows)
}

// Each walks every stored record in batches. Rows that fail to parse are passed to fn
// as an error so a scan can report them without stopping.
func (s *ProgressStore) Each(ctx context.Context, batchSize int, fn func(*tracker.ProgressRecord, error) error) error {
	var rows []models.UserProgress
	res := s.DB.WithContext(ctx).FindInBatches(&rows, batchSize, func(tx *gorm.DB, batch int) error {
		for i := range rows {
			record, err := ToRecord(&rows[i])
			if err := fn(record, err); err != nil {
				return err
			}
		}
		return nil
	})
	return res.Error
}

func toRecords(rows []models.UserProgress) ([]*tracker.ProgressRecord, error) {
	out := make([]*tracker.ProgressRecord, 0, len(rows))
	for i := range rows {
		r, err := ToRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ToRecord converts a stored row into a tracker record. Scores must be whole numbers in 0..100.
func ToRecord(row *models.UserProgress) (*tracker.ProgressRecord, error) {
	scores := make(map[string]int, len(row.QuizScores))
	for moduleID, v := range row.QuizScores {
		score, err := toScore(v)
		if err != nil {
			return nil, fmt.Errorf("%w: user %s course %s module %s: %v", ErrMalformedProgress, row.UserID, row.CourseID, moduleID, err)
		}
		scores[moduleID] = score
	}
	completed := append([]string{}, row.CompletedModules...)
	return &tracker.ProgressRecord{
		LearnerID:            row.UserID,
		CourseID:             row.CourseID,
		CompletedModuleIDs:   completed,
		QuizScores:           scores,
		CompletionPercentage: row.CompletionPercentage,
		LastAccessed:         row.LastAccessed,
		CompletedAt:          row.CompletedAt,
	}, nil
}

func FromRecord(record *tracker.ProgressRecord) *models.UserProgress {
	scores := make(datatypes.JSONMap, len(record.QuizScores))
	for k, v := range record.QuizScores {
		scores[k] = v
	}
	completed := append(datatypes.JSONSlice[string]{}, record.CompletedModuleIDs...)
	return &models.UserProgress{
		UserID:               record.LearnerID,
		CourseID:             record.CourseID,
		CompletedModules:     completed,
		QuizScores:           scores,
		CompletionPercentage: record.CompletionPercentage,
		LastAccessed:         record.LastAccessed,
		CompletedAt:          record.CompletedAt,
	}
}

func toScore(v interface{}) (int, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, fmt.Errorf("score has type %T", v)
	}
	if f != math.Trunc(f) || f < 0 || f > 100 {
		return 0, fmt.Errorf("score %v outside 0..100", f)
	}
	return int(f), nil
}
