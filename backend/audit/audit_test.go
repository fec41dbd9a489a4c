package audit

import (
	"context"
	"errors"
	"testing"

	"academy/backend/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memContent map[string]*tracker.Course

func (m memContent) Course(_ context.Context, id string) (*tracker.Course, error) {
	c, ok := m[id]
	if !ok {
		return nil, tracker.ErrCourseNotFound
	}
	return c, nil
}

type item struct {
	record *tracker.ProgressRecord
	err    error
}

type memWalker []item

func (w memWalker) Each(_ context.Context, _ int, fn func(*tracker.ProgressRecord, error) error) error {
	for _, it := range w {
		if err := fn(it.record, it.err); err != nil {
			return err
		}
	}
	return nil
}

func record(learner, course string, pct int, completed ...string) item {
	return item{record: &tracker.ProgressRecord{
		LearnerID:            learner,
		CourseID:             course,
		CompletedModuleIDs:   completed,
		QuizScores:           map[string]int{},
		CompletionPercentage: pct,
	}}
}

func TestAuditorRun(t *testing.T) {
	content := memContent{"c1": {ID: "c1", Modules: []tracker.Module{{ID: "m1"}, {ID: "m2"}}}}
	walker := memWalker{
		record("a", "c1", 50, "m1"),
		record("b", "c1", 67, "m1", "gone-2", "gone-1"),
		record("c", "deleted", 100, "x"),
		record("d", "deleted", 0),
		{err: errors.New("bad score")},
	}

	report, err := NewAuditor(content, walker, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 1, report.Malformed)
	assert.Equal(t, 2, report.OrphanedCourses)
	assert.Equal(t, 1, report.Drifted)
	require.Len(t, report.Stale, 1)
	assert.Equal(t, StaleEntry{LearnerID: "b", CourseID: "c1", ModuleIDs: []string{"gone-1", "gone-2"}}, report.Stale[0])
}

type brokenContent struct{}

func (brokenContent) Course(context.Context, string) (*tracker.Course, error) {
	return nil, errors.New("db down")
}

func TestAuditorStopsOnContentFailure(t *testing.T) {
	_, err := NewAuditor(brokenContent{}, memWalker{record("a", "c1", 0)}, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	_, err := NewAuditor(memContent{}, memWalker{}, nil).Schedule("not a cron spec")
	assert.Error(t, err)

	c, err := NewAuditor(memContent{}, memWalker{}, nil).Schedule("@every 1h")
	require.NoError(t, err)
	c.Stop()
}
