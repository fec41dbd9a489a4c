package stats

import (
	"context"
	"testing"
	"time"

	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/tracker"
	"academy/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) tracker.CompletionEvent {
	return tracker.CompletionEvent{
		LearnerID:   "u1",
		CompletedAt: time.Date(2026, 6, day, hour, 0, 0, 0, time.UTC),
	}
}

func TestApplyStreaks(t *testing.T) {
	testCases := []struct {
		name        string
		events      []tracker.CompletionEvent
		wantStreak  int
		wantLongest int
		wantCount   int
	}{
		{"first completion", []tracker.CompletionEvent{at(1, 9)}, 1, 1, 1},
		{"same day twice", []tracker.CompletionEvent{at(1, 9), at(1, 23)}, 1, 1, 2},
		{"consecutive days", []tracker.CompletionEvent{at(1, 23), at(2, 1), at(3, 12)}, 3, 3, 3},
		{"gap resets", []tracker.CompletionEvent{at(1, 9), at(2, 9), at(5, 9)}, 1, 2, 3},
		{"late event ignored for streak", []tracker.CompletionEvent{at(4, 9), at(2, 9)}, 1, 1, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var st models.LearnerStats
			for _, e := range tc.events {
				Apply(&st, e)
			}
			assert.Equal(t, tc.wantStreak, st.CurrentStreak)
			assert.Equal(t, tc.wantLongest, st.LongestStreak)
			assert.Equal(t, tc.wantCount, st.CompletedCourses)
		})
	}
}

func TestRecorderPersists(t *testing.T) {
	db, err := utils.InitDB(&config.Config{DBDriver: "sqlite", DBPath: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	r := NewRecorder(db)
	ctx := context.Background()

	empty, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.CompletedCourses)

	require.NoError(t, r.CourseCompleted(ctx, at(1, 9)))
	require.NoError(t, r.CourseCompleted(ctx, at(2, 9)))

	st, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.CompletedCourses)
	assert.Equal(t, 2, st.CurrentStreak)
	assert.True(t, st.LastActivityDate.Equal(at(2, 9).CompletedAt))
}
