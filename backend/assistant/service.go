package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"academy/backend/models"
	"academy/backend/tracker"

	"gorm.io/gorm"
)

const SystemPrompt = `You are an expert cybersecurity instructor and mentor, helping users learn about digital security.
Your responses should be:
1. Educational and informative
2. Practical with real-world examples
3. Encouraging and supportive
4. Security-focused and up-to-date
5. Clear and concise

When explaining concepts:
- Break down complex topics into simple terms
- Provide concrete examples
- Highlight best practices
- Mention common pitfalls to avoid
- Include relevant security tips

Always maintain a professional yet friendly tone, and encourage users to follow security best practices.`

// recentTopics is how many earlier questions are fed back as context.
const recentTopics = 5

var ErrEmptyMessage = errors.New("message is empty")

type Completer interface {
	Complete(ctx context.Context, messages []ChatCompletionMessage) (string, error)
}

type ProgressLister interface {
	ListByLearner(ctx context.Context, learnerID string) ([]*tracker.ProgressRecord, error)
}

type Service struct {
	DB       *gorm.DB
	LLM      Completer
	Progress ProgressLister
	Logger   *log.Logger
}

func NewService(db *gorm.DB, llm Completer, progress ProgressLister, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{DB: db, LLM: llm, Progress: progress, Logger: logger}
}

type LearnerContext struct {
	Name            string
	CurrentCourse   string
	CourseProgress  int
	RecentQuestions []string
}

// Chat answers a learner's question and stores the exchange.
func (s *Service) Chat(ctx context.Context, userID, message string) (*models.ChatHistory, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	lc, err := s.learnerContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.LLM.Complete(ctx, []ChatCompletionMessage{
		{Role: "system", Content: SystemPrompt},
		{Role: "system", Content: ContextPrompt(lc)},
		{Role: "user", Content: message},
	})
	if err != nil {
		s.Logger.Printf("assistant completion for user %s failed: %v", userID, err)
		return nil, err
	}

	entry := models.ChatHistory{UserID: userID, Message: message, Response: reply}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("save chat history: %w", err)
	}
	return &entry, nil
}

// History returns the newest exchanges first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]models.ChatHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.ChatHistory
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *Service) learnerContext(ctx context.Context, userID string) (*LearnerContext, error) {
	db := s.DB.WithContext(ctx)
	lc := &LearnerContext{}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	lc.Name = user.FirstName

	records, err := s.Progress.ListByLearner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if len(records) > 0 {
		current := records[0]
		var course models.Course
		if err := db.Select("id", "title").
			Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Select("id", "course_id") }).
			First(&course, "id = ?", current.CourseID).Error; err == nil {
			def := &tracker.Course{ID: course.ID}
			for _, m := range course.Modules {
				def.Modules = append(def.Modules, tracker.Module{ID: m.ID})
			}
			lc.CurrentCourse = course.Title
			lc.CourseProgress = tracker.CompletionPercentage(def, current.CompletedModuleIDs)
		}
	}

	recent, err := s.History(ctx, userID, recentTopics)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	for _, h := range recent {
		lc.RecentQuestions = append(lc.RecentQuestions, h.Message)
	}
	return lc, nil
}

func ContextPrompt(lc *LearnerContext) string {
	var b strings.Builder
	name := lc.Name
	if name == "" {
		name = "Student"
	}
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", name)
	if lc.CurrentCourse != "" {
		fmt.Fprintf(&b, "- Currently studying: %s (%d%% complete)\n", lc.CurrentCourse, lc.CourseProgress)
	} else {
		b.WriteString("- Not enrolled in any course\n")
	}
	if len(lc.RecentQuestions) > 0 {
		fmt.Fprintf(&b, "- Recent topics discussed: %s\n", strings.Join(lc.RecentQuestions, ", "))
	}
	b.WriteString("\nPlease provide a helpful response based on the user's learning context.")
	return b.String()
}
