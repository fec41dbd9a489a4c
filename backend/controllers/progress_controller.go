package controllers

import (
	"errors"
	"log"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"
	"academy/backend/stats"
	"academy/backend/store"
	"academy/backend/tracker"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Tracker  *tracker.Tracker
	Progress *store.ProgressStore
	Stats    *stats.Recorder
	Logger   *log.Logger
}

func NewProgressController(db *gorm.DB, cfg *config.Config, tr *tracker.Tracker, progress *store.ProgressStore, st *stats.Recorder, logger *log.Logger) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Tracker: tr, Progress: progress, Stats: st, Logger: logger}
}

// GetProgress godoc
// @Summary Learning dashboard
// @Description Every enrolled course with its completion plus streak stats
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	ctx := c.UserContext()

	records, err := pc.Progress.ListByLearner(ctx, userID)
	if err != nil {
		return trackerError(c, pc.Logger, storeError(err))
	}

	overview := models.ProgressOverview{Courses: make([]models.CourseProgress, 0, len(records))}
	for _, r := range records {
		var course models.Course
		if err := pc.DB.Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Select("id", "course_id") }).
			First(&course, "id = ?", r.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return utils.InternalServerError(c, "Could not load course")
		}
		def, err := store.ToTrackerCourse(&course)
		if err != nil {
			return utils.InternalServerError(c, "Could not load course")
		}

		pct := tracker.CompletionPercentage(def, r.CompletedModuleIDs)
		overview.Courses = append(overview.Courses, models.CourseProgress{
			CourseID:             course.ID,
			Title:                course.Title,
			CompletionPercentage: pct,
			State:                string(tracker.StateOf(pct)),
			CompletedModules:     len(r.CompletedModuleIDs) - len(r.StaleModuleIDs(def)),
			TotalModules:         len(def.Modules),
			LastAccessed:         r.LastAccessed,
		})
	}

	st, err := pc.Stats.Get(ctx, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load stats")
	}
	overview.CompletedCourses = st.CompletedCourses
	overview.CurrentStreak = st.CurrentStreak
	overview.LongestStreak = st.LongestStreak
	if !st.LastActivityDate.IsZero() {
		last := st.LastActivityDate
		overview.LastActivityDate = &last
	}
	if err := pc.DB.Model(&models.Certificate{}).Where("user_id = ?", userID).Count(&overview.Certificates).Error; err != nil {
		return utils.InternalServerError(c, "Could not load certificates")
	}

	return utils.Success(c, fiber.StatusOK, overview)
}
