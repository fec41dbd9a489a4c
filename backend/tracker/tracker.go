package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

type ContentStore interface {
	// Course returns the course with its modules in authoring order, or ErrCourseNotFound.
	Course(ctx context.Context, courseID string) (*Course, error)
}

type ProgressStore interface {
	// Load returns ErrNoProgress when the learner has no record for the course.
	Load(ctx context.Context, learnerID, courseID string) (*ProgressRecord, error)
	// Save upserts the record keyed by (learner, course).
	Save(ctx context.Context, record *ProgressRecord) error
}

// Notifier receives one-way course completion notifications.
type Notifier interface {
	CourseCompleted(ctx context.Context, event CompletionEvent) error
}

// Tracker is the only code path that mutates progress records. It holds collaborator
// handles and no per-learner state, so one instance can serve every request.
type Tracker struct {
	content  ContentStore
	progress ProgressStore
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

type Option func(*Tracker)

func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(content ContentStore, progress ProgressStore, opts ...Option) *Tracker {
	t := &Tracker{
		content:  content,
		progress: progress,
		logger:   log.New(io.Discard, "", 0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Status returns the learner's record, or a zero record when none exists.
// The percentage is recomputed against the current module list.
func (t *Tracker) Status(ctx context.Context, learnerID, courseID string) (*ProgressRecord, error) {
	course, err := t.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	record, _, err := t.load(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	record.CompletionPercentage = CompletionPercentage(course, record.CompletedModuleIDs)
	return record, nil
}

// Enroll creates an empty record if the learner has none. Repeated calls are no-ops.
func (t *Tracker) Enroll(ctx context.Context, learnerID, courseID string) (*ProgressRecord, error) {
	course, err := t.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	record, exists, err := t.load(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		record.CompletionPercentage = CompletionPercentage(course, record.CompletedModuleIDs)
		return record, nil
	}

	record.LastAccessed = t.now().UTC()
	if err := t.save(ctx, record); err != nil {
		return nil, err
	}
	t.logger.Printf("learner %s enrolled in course %s", learnerID, courseID)
	return record, nil
}

// Modules returns the state of every module in course order.
func (t *Tracker) Modules(ctx context.Context, learnerID, courseID string) ([]ModuleStatus, error) {
	course, err := t.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	record, _, err := t.load(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}

	out := make([]ModuleStatus, len(course.Modules))
	for i := range course.Modules {
		m := &course.Modules[i]
		st := ModuleStatus{
			ModuleID: m.ID,
			Title:    m.Title,
			Index:    i,
			HasQuiz:  m.HasQuiz(),
			State:    moduleState(m, record),
		}
		if s, ok := record.Score(m.ID); ok {
			score := s
			st.QuizScore = &score
		}
		out[i] = st
	}
	return out, nil
}

// Quiz returns a module's questions without the correct answers.
func (t *Tracker) Quiz(ctx context.Context, learnerID, courseID, moduleID string) (*QuizView, error) {
	course, err := t.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	module, ok := course.Module(moduleID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown module %q", ErrInvalidSubmission, moduleID)
	}
	if !module.HasQuiz() {
		return nil, fmt.Errorf("%w: module %q has no quiz", ErrInvalidSubmission, moduleID)
	}
	record, _, err := t.load(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}

	view := &QuizView{
		ModuleID:      module.ID,
		PassThreshold: course.Threshold(),
		Questions:     make([]QuestionView, len(module.Quiz.Questions)),
		State:         ModuleQuizPending,
	}
	if record.HasCompleted(module.ID) {
		view.State = ModuleCompleted
	}
	for i, q := range module.Quiz.Questions {
		view.Questions[i] = QuestionView{Prompt: q.Prompt, Options: append([]string{}, q.Options...)}
	}
	return view, nil
}

// SubmitQuiz grades answers, records the score and completes the module when it passes.
// The score and the completion are persisted in a single write.
func (t *Tracker) SubmitQuiz(ctx context.Context, learnerID, courseID, moduleID string, answers []int) (*QuizResult, error) {
	course, err := t.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	module, ok := course.Module(moduleID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown module %q", ErrInvalidSubmission, moduleID)
	}
	correct, score, err := Grade(module.Quiz, answers)
	if err != nil {
		return nil, err
	}

	current, _, err := t.load(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	before := StateOf(CompletionPercentage(course, current.CompletedModuleIDs))

	next := current.Clone()
	next.QuizScores[module.ID] = score
	passed := score >= course.Threshold()
	if passed {
		next.addCompleted(module.ID)
	}
	next.CompletionPercentage = CompletionPercentage(course, next.CompletedModuleIDs)
	next.LastAccessed = t.now().UTC()
	first := markCompleted(next, before)

	if err := t.save(ctx, next); err != nil {
		return nil, err
	}
	t.logger.Printf("learner %s scored %d on module %s of course %s", learnerID, score, moduleID, courseID)
	if first {
		t.notify(ctx, course, next)
	}

	after := StateOf(next.CompletionPercentage)
	return &QuizResult{
		ModuleID:     module.ID,
		Score:        score,
		Correct:      correct,
		Total:        len(module.Quiz.Questions),
		Passed:       passed,
		ModuleState:  moduleState(module, next),
		Record:       next,
		CourseStatus: after,
	}, nil
}

// CompleteModule marks a module complete. It fails with ErrPrerequisiteNotMet when the module
// has a quiz whose latest score is below the threshold. Completing a completed module is a no-op.
func (t *Tracker) CompleteModule(ctx context.Context, learnerID, courseID, moduleID string) (*ProgressRecord, error) {
	course, err := t.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	module, ok := course.Module(moduleID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown module %q", ErrInvalidSubmission, moduleID)
	}

	current, _, err := t.load(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	if current.HasCompleted(module.ID) {
		current.CompletionPercentage = CompletionPercentage(course, current.CompletedModuleIDs)
		return current, nil
	}
	if module.HasQuiz() {
		score, attempted := current.Score(module.ID)
		if !attempted || score < course.Threshold() {
			return nil, fmt.Errorf("%w: module %q requires a quiz score of at least %d", ErrPrerequisiteNotMet, module.ID, course.Threshold())
		}
	}
	before := StateOf(CompletionPercentage(course, current.CompletedModuleIDs))

	next := current.Clone()
	next.addCompleted(module.ID)
	next.CompletionPercentage = CompletionPercentage(course, next.CompletedModuleIDs)
	next.LastAccessed = t.now().UTC()
	first := markCompleted(next, before)

	if err := t.save(ctx, next); err != nil {
		return nil, err
	}
	t.logger.Printf("learner %s completed module %s of course %s (%d%%)", learnerID, moduleID, courseID, next.CompletionPercentage)
	if first {
		t.notify(ctx, course, next)
	}
	return next, nil
}

// markCompleted stamps CompletedAt on the first write that reaches 100% and reports whether
// the completion should be announced. A record already at 100% without a stamp is stamped silently.
func markCompleted(record *ProgressRecord, before CourseState) bool {
	if record.CompletedAt != nil || StateOf(record.CompletionPercentage) != CourseCompleted {
		return false
	}
	at := record.LastAccessed
	record.CompletedAt = &at
	return before != CourseCompleted
}

func (t *Tracker) notify(ctx context.Context, course *Course, record *ProgressRecord) {
	if t.notifier == nil {
		return
	}
	event := CompletionEvent{
		LearnerID:   record.LearnerID,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		CompletedAt: *record.CompletedAt,
	}
	if err := t.notifier.CourseCompleted(ctx, event); err != nil {
		t.logger.Printf("completion notification for learner %s course %s failed: %v", record.LearnerID, course.ID, err)
	}
}

func (t *Tracker) course(ctx context.Context, courseID string) (*Course, error) {
	course, err := t.content.Course(ctx, courseID)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load course %s: %w", courseID, err)
	}
	return course, nil
}

func (t *Tracker) load(ctx context.Context, learnerID, courseID string) (*ProgressRecord, bool, error) {
	record, err := t.progress.Load(ctx, learnerID, courseID)
	if errors.Is(err, ErrNoProgress) {
		return emptyRecord(learnerID, courseID), false, nil
	}
	if errors.Is(err, ErrCorruptRecord) {
		return nil, false, fmt.Errorf("load progress: %w", err)
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: load progress: %w", ErrPersistence, err)
	}
	if record.QuizScores == nil {
		record.QuizScores = map[string]int{}
	}
	if record.CompletedModuleIDs == nil {
		record.CompletedModuleIDs = []string{}
	}
	return record, true, nil
}

func (t *Tracker) save(ctx context.Context, record *ProgressRecord) error {
	if err := t.progress.Save(ctx, record.Clone()); err != nil {
		return fmt.Errorf("%w: save progress: %w", ErrPersistence, err)
	}
	return nil
}

func moduleState(m *Module, record *ProgressRecord) ModuleState {
	if record.HasCompleted(m.ID) {
		return ModuleCompleted
	}
	if m.HasQuiz() {
		if _, attempted := record.Score(m.ID); attempted {
			return ModuleQuizPending
		}
	}
	return ModuleAvailable
}
