package store

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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := utils.InitDB(&config.Config{
		DBDriver: "sqlite",
		DBPath:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	return db
}

func seedCourse(t *testing.T, db *gorm.DB) *models.Course {
	t.Helper()
	course := &models.Course{
		Title: "Network Defense",
		Modules: []models.Module{
			{Title: "Firewalls", OrderIndex: 2, Quiz: datatypes.JSON(`[{"question":"Default policy?","options":["allow","deny"],"correctAnswer":1}]`)},
			{Title: "Intro", OrderIndex: 1},
			{Title: "Empty quiz", OrderIndex: 3, Quiz: datatypes.JSON(`[]`)},
		},
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func TestContentStoreCourse(t *testing.T) {
	db := newTestDB(t)
	seeded := seedCourse(t, db)
	s := NewContentStore(db)

	course, err := s.Course(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Len(t, course.Modules, 3)
	assert.Equal(t, "Intro", course.Modules[0].Title)
	assert.Equal(t, "Firewalls", course.Modules[1].Title)
	assert.True(t, course.Modules[1].HasQuiz())
	assert.Equal(t, 1, course.Modules[1].Quiz.Questions[0].CorrectAnswer)
	assert.False(t, course.Modules[2].HasQuiz())
	assert.Equal(t, 70, course.Threshold())

	_, err = s.Course(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, tracker.ErrCourseNotFound)
}

func TestParseQuizIsStrict(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		wantNil bool
		wantErr bool
	}{
		{"null", `null`, true, false},
		{"empty column", ``, true, false},
		{"empty list", `[]`, true, false},
		{"valid", `[{"question":"q","options":["a","b"],"correctAnswer":0}]`, false, false},
		{"answer out of range", `[{"question":"q","options":["a","b"],"correctAnswer":2}]`, false, true},
		{"single option", `[{"question":"q","options":["a"],"correctAnswer":0}]`, false, true},
		{"unknown field", `[{"question":"q","options":["a","b"],"correct":0}]`, false, true},
		{"string answer", `[{"question":"q","options":["a","b"],"correctAnswer":"0"}]`, false, true},
		{"object", `{"question":"q"}`, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quiz, err := ParseQuiz(datatypes.JSON(tc.raw))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedQuiz)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantNil, quiz == nil)
		})
	}
}

func TestProgressStoreUpsert(t *testing.T) {
	db := newTestDB(t)
	s := NewProgressStore(db)
	ctx := context.Background()

	_, err := s.Load(ctx, "learner", "course")
	assert.ErrorIs(t, err, tracker.ErrNoProgress)

	rec := &tracker.ProgressRecord{
		LearnerID:            "learner",
		CourseID:             "course",
		CompletedModuleIDs:   []string{"m1"},
		QuizScores:           map[string]int{"m2": 50},
		CompletionPercentage: 50,
		LastAccessed:         time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(ctx, rec))

	rec.CompletedModuleIDs = append(rec.CompletedModuleIDs, "m2")
	rec.QuizScores["m2"] = 100
	rec.CompletionPercentage = 100
	completedAt := time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC)
	rec.CompletedAt = &completedAt
	require.NoError(t, s.Save(ctx, rec))

	var count int64
	db.Model(&models.UserProgress{}).Count(&count)
	assert.Equal(t, int64(1), count)

	loaded, err := s.Load(ctx, "learner", "course")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, loaded.CompletedModuleIDs)
	assert.Equal(t, map[string]int{"m2": 100}, loaded.QuizScores)
	assert.Equal(t, 100, loaded.CompletionPercentage)
	assert.True(t, rec.LastAccessed.Equal(loaded.LastAccessed))
	require.NotNil(t, loaded.CompletedAt)
	assert.True(t, completedAt.Equal(*loaded.CompletedAt))
}

func TestProgressStoreRejectsMalformedScores(t *testing.T) {
	db := newTestDB(t)
	s := NewProgressStore(db)

	for i, bad := range []interface{}{"ninety", 120, 33.5} {
		row := models.UserProgress{
			UserID:           "learner",
			CourseID:         uuid.NewString(),
			CompletedModules: datatypes.JSONSlice[string]{},
			QuizScores:       datatypes.JSONMap{"m1": bad},
		}
		require.NoError(t, db.Create(&row).Error)

		_, err := s.Load(context.Background(), "learner", row.CourseID)
		assert.ErrorIs(t, err, ErrMalformedProgress, "case %d", i)
		assert.ErrorIs(t, err, tracker.ErrCorruptRecord, "case %d", i)
	}
}

func TestProgressStoreListingAndEach(t *testing.T) {
	db := newTestDB(t)
	s := NewProgressStore(db)
	ctx := context.Background()

	for i, pair := range [][2]string{{"a", "c1"}, {"a", "c2"}, {"b", "c1"}} {
		require.NoError(t, s.Save(ctx, &tracker.ProgressRecord{
			LearnerID:            pair[0],
			CourseID:             pair[1],
			CompletedModuleIDs:   []string{},
			QuizScores:           map[string]int{},
			CompletionPercentage: i * 10,
			LastAccessed:         time.Now().UTC().Add(time.Duration(i) * time.Minute),
		}))
	}

	byLearner, err := s.ListByLearner(ctx, "a")
	require.NoError(t, err)
	require.Len(t, byLearner, 2)
	assert.Equal(t, "c2", byLearner[0].CourseID)

	byCourse, err := s.ListByCourse(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, byCourse, 2)
	assert.Equal(t, "b", byCourse[0].LearnerID)

	seen := 0
	err = s.Each(ctx, 2, func(r *tracker.ProgressRecord, err error) error {
		require.NoError(t, err)
		seen++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
}

func TestTrackerOverGormStores(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	tr := tracker.New(NewContentStore(db), NewProgressStore(db))
	ctx := context.Background()

	var intro, firewalls string
	for _, m := range course.Modules {
		switch m.Title {
		case "Intro":
			intro = m.ID
		case "Firewalls":
			firewalls = m.ID
		}
	}

	_, err := tr.CompleteModule(ctx, "learner", course.ID, firewalls)
	assert.ErrorIs(t, err, tracker.ErrPrerequisiteNotMet)

	res, err := tr.SubmitQuiz(ctx, "learner", course.ID, firewalls, []int{1})
	require.NoError(t, err)
	assert.True(t, res.Passed)

	rec, err := tr.CompleteModule(ctx, "learner", course.ID, intro)
	require.NoError(t, err)
	assert.Equal(t, 67, rec.CompletionPercentage)

	status, err := tr.Status(ctx, "learner", course.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{intro, firewalls}, status.CompletedModuleIDs)
	assert.Equal(t, 100, status.QuizScores[firewalls])
}
