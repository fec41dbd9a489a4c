package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"academy/backend/models"
	"academy/backend/tracker"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrMalformedQuiz = errors.New("malformed quiz")

// ContentStore reads authored courses and converts them into tracker definitions.
type ContentStore struct {
	DB *gorm.DB
	// DefaultThreshold applies to courses stored without a pass threshold.
	DefaultThreshold int
}

func NewContentStore(db *gorm.DB) *ContentStore {
	return &ContentStore{DB: db}
}

func (s *ContentStore) Course(ctx context.Context, courseID string) (*tracker.Course, error) {
	var course models.Course
	err := s.DB.WithContext(ctx).
		Preload("Modules", OrderedModules).
		First(&course, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracker.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	out, err := ToTrackerCourse(&course)
	if err != nil {
		return nil, err
	}
	if out.PassThreshold <= 0 {
		out.PassThreshold = s.DefaultThreshold
	}
	return out, nil
}

// OrderedModules sorts preloaded modules in authoring order.
func OrderedModules(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC").Order("created_at ASC")
}

func ToTrackerCourse(course *models.Course) (*tracker.Course, error) {
	out := &tracker.Course{
		ID:            course.ID,
		Title:         course.Title,
		Description:   course.Description,
		PassThreshold: course.PassThreshold,
		Modules:       make([]tracker.Module, 0, len(course.Modules)),
	}
	for _, m := range course.Modules {
		quiz, err := ParseQuiz(m.Quiz)
		if err != nil {
			return nil, fmt.Errorf("course %s module %s: %w", course.ID, m.ID, err)
		}
		out.Modules = append(out.Modules, tracker.Module{
			ID:      m.ID,
			Title:   m.Title,
			Content: m.Content,
			Quiz:    quiz,
		})
	}
	return out, nil
}

// ParseQuiz decodes a stored quiz column. Null and empty lists mean no quiz.
func ParseQuiz(raw datatypes.JSON) (*tracker.Quiz, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var questions []models.QuizQuestion
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
	}
	if len(questions) == 0 {
		return nil, nil
	}

	quiz := &tracker.Quiz{Questions: make([]tracker.Question, len(questions))}
	for i, q := range questions {
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d needs at least two options", ErrMalformedQuiz, i)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d correct answer %d out of range", ErrMalformedQuiz, i, q.CorrectAnswer)
		}
		quiz.Questions[i] = tracker.Question{
			Prompt:        q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
	}
	return quiz, nil
}

// EncodeQuiz is the inverse of ParseQuiz, used by course authoring.
func EncodeQuiz(questions []models.QuizQuestion) (datatypes.JSON, error) {
	if len(questions) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return nil, err
	}
	if _, err := ParseQuiz(raw); err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
