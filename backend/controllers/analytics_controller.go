package controllers

import (
	"errors"
	"log"

	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/store"
	"academy/backend/tracker"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *store.ProgressStore
	Logger   *log.Logger
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config, progress *store.ProgressStore, logger *log.Logger) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg, Progress: progress, Logger: logger}
}

// GetCourseAnalytics returns every learner's standing in a course plus averages per quiz.
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	courseID := c.Params("id")

	var course models.Course
	if err := ac.DB.Preload("Modules", store.OrderedModules).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not load course")
	}
	def, err := store.ToTrackerCourse(&course)
	if err != nil {
		return utils.InternalServerError(c, "Course content is malformed")
	}

	records, err := ac.Progress.ListByCourse(c.UserContext(), courseID)
	if err != nil {
		return trackerError(c, ac.Logger, storeError(err))
	}

	userIDs := make([]string, 0, len(records))
	for _, r := range records {
		userIDs = append(userIDs, r.LearnerID)
	}
	var users []models.User
	if len(userIDs) > 0 {
		if err := ac.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return utils.InternalServerError(c, "Could not load learners")
		}
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	result := models.CourseAnalytics{
		CourseID:         course.ID,
		Title:            course.Title,
		Modules:          len(def.Modules),
		Enrolled:         len(records),
		AverageQuizScore: map[string]float64{},
		Learners:         make([]models.LearnerProgress, 0, len(records)),
	}

	scoreSums := map[string]int{}
	scoreCounts := map[string]int{}
	totalPct := 0
	for _, r := range records {
		pct := tracker.CompletionPercentage(def, r.CompletedModuleIDs)
		totalPct += pct
		if pct >= 100 {
			result.Completed++
		}
		for moduleID, score := range r.QuizScores {
			scoreSums[moduleID] += score
			scoreCounts[moduleID]++
		}

		lp := models.LearnerProgress{
			UserID:               r.LearnerID,
			CompletionPercentage: pct,
			LastAccessed:         r.LastAccessed,
		}
		if u, ok := byID[r.LearnerID]; ok {
			lp.Name = u.DisplayName()
			lp.Email = u.Email
		}
		result.Learners = append(result.Learners, lp)
	}
	if len(records) > 0 {
		result.AverageCompletion = float64(totalPct) / float64(len(records))
	}
	for moduleID, sum := range scoreSums {
		if _, ok := def.Module(moduleID); ok {
			result.AverageQuizScore[moduleID] = float64(sum) / float64(scoreCounts[moduleID])
		}
	}

	return utils.Success(c, fiber.StatusOK, result)
}
