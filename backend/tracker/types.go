package tracker

import (
	"sort"
	"time"
)

// DefaultPassThreshold is the minimum quiz score a course uses when it does not set its own.
const DefaultPassThreshold = 70

type Course struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Modules       []Module `json:"modules"`
	PassThreshold int      `json:"pass_threshold"`
}

type Module struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Quiz    *Quiz  `json:"quiz,omitempty"`
}

type Quiz struct {
	Questions []Question `json:"questions"`
}

type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

// Threshold returns the course pass threshold, falling back to DefaultPassThreshold.
func (c *Course) Threshold() int {
	if c.PassThreshold <= 0 {
		return DefaultPassThreshold
	}
	return c.PassThreshold
}

func (c *Course) Module(id string) (*Module, bool) {
	for i := range c.Modules {
		if c.Modules[i].ID == id {
			return &c.Modules[i], true
		}
	}
	return nil, false
}

func (c *Course) moduleSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Modules))
	for _, m := range c.Modules {
		set[m.ID] = struct{}{}
	}
	return set
}

func (m *Module) HasQuiz() bool {
	return m.Quiz != nil && len(m.Quiz.Questions) > 0
}

// ProgressRecord is the durable standing of one learner in one course.
type ProgressRecord struct {
	LearnerID            string         `json:"learner_id"`
	CourseID             string         `json:"course_id"`
	CompletedModuleIDs   []string       `json:"completed_module_ids"`
	QuizScores           map[string]int `json:"quiz_scores"`
	CompletionPercentage int            `json:"completion_percentage"`
	LastAccessed         time.Time      `json:"last_accessed"`
	// CompletedAt is set by the write that first takes the course to 100% and never cleared,
	// so adding modules later does not produce a second completion.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func emptyRecord(learnerID, courseID string) *ProgressRecord {
	return &ProgressRecord{
		LearnerID:          learnerID,
		CourseID:           courseID,
		CompletedModuleIDs: []string{},
		QuizScores:         map[string]int{},
	}
}

func (r *ProgressRecord) Clone() *ProgressRecord {
	out := *r
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		out.CompletedAt = &at
	}
	out.CompletedModuleIDs = append([]string{}, r.CompletedModuleIDs...)
	out.QuizScores = make(map[string]int, len(r.QuizScores))
	for k, v := range r.QuizScores {
		out.QuizScores[k] = v
	}
	return &out
}

func (r *ProgressRecord) HasCompleted(moduleID string) bool {
	for _, id := range r.CompletedModuleIDs {
		if id == moduleID {
			return true
		}
	}
	return false
}

func (r *ProgressRecord) Score(moduleID string) (int, bool) {
	s, ok := r.QuizScores[moduleID]
	return s, ok
}

// StaleModuleIDs returns completed ids that no longer exist in the course, sorted.
func (r *ProgressRecord) StaleModuleIDs(course *Course) []string {
	set := course.moduleSet()
	var stale []string
	for _, id := range r.CompletedModuleIDs {
		if _, ok := set[id]; !ok {
			stale = append(stale, id)
		}
	}
	sort.Strings(stale)
	return stale
}

func (r *ProgressRecord) addCompleted(moduleID string) {
	if !r.HasCompleted(moduleID) {
		r.CompletedModuleIDs = append(r.CompletedModuleIDs, moduleID)
	}
}

type ModuleState string

const (
	ModuleLocked      ModuleState = "locked"
	ModuleAvailable   ModuleState = "available"
	ModuleQuizPending ModuleState = "quiz_pending"
	ModuleCompleted   ModuleState = "completed"
)

type CourseState string

const (
	CourseNotStarted CourseState = "not_started"
	CourseInProgress CourseState = "in_progress"
	CourseCompleted  CourseState = "completed"
)

// ModuleStatus is one row of a learner's course outline.
type ModuleStatus struct {
	ModuleID  string      `json:"module_id"`
	Title     string      `json:"title"`
	Index     int         `json:"index"`
	HasQuiz   bool        `json:"has_quiz"`
	State     ModuleState `json:"state"`
	QuizScore *int        `json:"quiz_score,omitempty"`
}

// QuizView is a quiz as shown to a learner, without correct answers.
type QuizView struct {
	ModuleID      string         `json:"module_id"`
	PassThreshold int            `json:"pass_threshold"`
	Questions     []QuestionView `json:"questions"`
	State         ModuleState    `json:"state"`
}

type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type QuizResult struct {
	ModuleID     string          `json:"module_id"`
	Score        int             `json:"score"`
	Correct      int             `json:"correct"`
	Total        int             `json:"total"`
	Passed       bool            `json:"passed"`
	ModuleState  ModuleState     `json:"module_state"`
	Record       *ProgressRecord `json:"progress"`
	CourseStatus CourseState     `json:"course_state"`
}

// CompletionEvent is emitted once when a learner's course reaches 100%.
type CompletionEvent struct {
	LearnerID   string    `json:"learner_id"`
	CourseID    string    `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	CompletedAt time.Time `json:"completed_at"`
}
