package controllers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"
	"academy/backend/store"
	"academy/backend/tracker"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CacheInvalidator drops cached course definitions after authoring changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, courseID string) error
}

type CoursesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Tracker  *tracker.Tracker
	Progress *store.ProgressStore
	Cache    CacheInvalidator
	Logger   *log.Logger
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, tr *tracker.Tracker, progress *store.ProgressStore, cache CacheInvalidator, logger *log.Logger) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Tracker: tr, Progress: progress, Cache: cache, Logger: logger}
}

type CourseSummary struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	Level                string `json:"level"`
	Duration             string `json:"duration"`
	IsWorkshop           bool   `json:"is_workshop"`
	ImageURL             string `json:"image_url"`
	Modules              int    `json:"modules"`
	Enrolled             bool   `json:"enrolled"`
	CompletionPercentage int    `json:"completion_percentage"`
	State                string `json:"state"`
}

type ModuleDetail struct {
	tracker.ModuleStatus
	Content string `json:"content"`
}

type CourseDetail struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Level         string                  `json:"level"`
	Duration      string                  `json:"duration"`
	IsWorkshop    bool                    `json:"is_workshop"`
	ImageURL      string                  `json:"image_url"`
	PassThreshold int                     `json:"pass_threshold"`
	Modules       []ModuleDetail          `json:"modules"`
	Progress      *tracker.ProgressRecord `json:"progress"`
	State         tracker.CourseState     `json:"state"`
}

type ProgressResponse struct {
	Progress *tracker.ProgressRecord `json:"progress"`
	State    tracker.CourseState     `json:"state"`
	Modules  []tracker.ModuleStatus  `json:"modules"`
}

type CreateCourseRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description"`
	Level         string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Duration      string `json:"duration" validate:"max=50"`
	IsWorkshop    bool   `json:"is_workshop"`
	ImageURL      string `json:"image_url" validate:"omitempty,url"`
	PassThreshold int    `json:"pass_threshold" validate:"gte=0,lte=100"`
}

type UpdateCourseRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description"`
	Level         *string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Duration      *string `json:"duration" validate:"omitempty,max=50"`
	IsWorkshop    *bool   `json:"is_workshop"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
	PassThreshold *int    `json:"pass_threshold" validate:"omitempty,gte=1,lte=100"`
}

type ModuleRequest struct {
	Title      string                `json:"title" validate:"required,max=200"`
	Content    string                `json:"content"`
	OrderIndex int                   `json:"order_index" validate:"gte=0"`
	Quiz       []models.QuizQuestion `json:"quiz" validate:"omitempty,dive"`
}

type UpdateModuleRequest struct {
	Title      *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Content    *string                `json:"content"`
	OrderIndex *int                   `json:"order_index" validate:"omitempty,gte=0"`
	Quiz       *[]models.QuizQuestion `json:"quiz" validate:"omitempty,dive"`
}

// ListCourses godoc
// @Summary Course catalog
// @Description Lists courses and workshops with the caller's completion
// @Tags courses
// @Produce json
// @Param search query string false "Text search in title and description"
// @Param level query string false "beginner, intermediate, advanced or all"
// @Param kind query string false "all, courses or workshops"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	query := cc.DB.Model(&models.Course{})
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if level := c.Query("level"); level != "" && level != "all" {
		query = query.Where("level = ?", level)
	}
	switch c.Query("kind", "all") {
	case "all":
	case "courses":
		query = query.Where("is_workshop = ?", false)
	case "workshops":
		query = query.Where("is_workshop = ?", true)
	default:
		return utils.BadRequest(c, "kind must be one of all, courses, workshops")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Could not count courses")
	}

	var courses []models.Course
	if err := query.
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Select("id", "course_id") }).
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(pageSize).
		Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not load courses")
	}

	records, err := cc.Progress.ListByLearner(c.UserContext(), userID)
	if err != nil {
		return trackerError(c, cc.Logger, storeError(err))
	}
	byCourse := make(map[string]*tracker.ProgressRecord, len(records))
	for _, r := range records {
		byCourse[r.CourseID] = r
	}

	result := make([]CourseSummary, 0, len(courses))
	for i := range courses {
		course := &courses[i]
		summary := CourseSummary{
			ID:          course.ID,
			Title:       course.Title,
			Description: course.Description,
			Level:       course.Level,
			Duration:    course.Duration,
			IsWorkshop:  course.IsWorkshop,
			ImageURL:    course.ImageURL,
			Modules:     len(course.Modules),
			State:       string(tracker.CourseNotStarted),
		}
		if r, ok := byCourse[course.ID]; ok {
			def, err := store.ToTrackerCourse(course)
			if err == nil {
				summary.CompletionPercentage = tracker.CompletionPercentage(def, r.CompletedModuleIDs)
			}
			summary.Enrolled = true
			summary.State = string(tracker.StateOf(summary.CompletionPercentage))
		}
		result = append(result, summary)
	}

	return utils.Paginate(c, result, total, page, pageSize)
}

// GetCourseDetails godoc
// @Summary Course details
// @Description Course content with each module's state for the caller
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	courseID := c.Params("id")

	var course models.Course
	if err := cc.DB.Preload("Modules", store.OrderedModules).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not load course")
	}

	ctx := c.UserContext()
	record, err := cc.Tracker.Status(ctx, userID, courseID)
	if err != nil {
		return trackerError(c, cc.Logger, err)
	}
	statuses, err := cc.Tracker.Modules(ctx, userID, courseID)
	if err != nil {
		return trackerError(c, cc.Logger, err)
	}

	content := make(map[string]string, len(course.Modules))
	for _, m := range course.Modules {
		content[m.ID] = m.Content
	}
	modules := make([]ModuleDetail, len(statuses))
	for i, st := range statuses {
		modules[i] = ModuleDetail{ModuleStatus: st, Content: content[st.ModuleID]}
	}

	threshold := course.PassThreshold
	if threshold <= 0 {
		threshold = cc.Cfg.PassThreshold
	}
	return utils.Success(c, fiber.StatusOK, CourseDetail{
		ID:            course.ID,
		Title:         course.Title,
		Description:   course.Description,
		Level:         course.Level,
		Duration:      course.Duration,
		IsWorkshop:    course.IsWorkshop,
		ImageURL:      course.ImageURL,
		PassThreshold: threshold,
		Modules:       modules,
		Progress:      record,
		State:         tracker.StateOf(record.CompletionPercentage),
	})
}

func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	record, err := cc.Tracker.Enroll(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return trackerError(c, cc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, record)
}

// GetProgress godoc
// @Summary Learner progress in a course
// @Description Returns the zero record when the learner has not started
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/progress [get]
func (cc *CoursesController) GetProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	courseID := c.Params("id")
	ctx := c.UserContext()

	record, err := cc.Tracker.Status(ctx, userID, courseID)
	if err != nil {
		return trackerError(c, cc.Logger, err)
	}
	modules, err := cc.Tracker.Modules(ctx, userID, courseID)
	if err != nil {
		return trackerError(c, cc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, ProgressResponse{
		Progress: record,
		State:    tracker.StateOf(record.CompletionPercentage),
		Modules:  modules,
	})
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	course := models.Course{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Level:         req.Level,
		Duration:      req.Duration,
		IsWorkshop:    req.IsWorkshop,
		ImageURL:      req.ImageURL,
		PassThreshold: req.PassThreshold,
	}
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}
	if course.PassThreshold == 0 {
		course.PassThreshold = cc.Cfg.PassThreshold
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}
	return utils.Created(c, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	var req UpdateCourseRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	course, err := cc.findCourse(c.Params("id"))
	if err != nil {
		return cc.courseLookupError(c, err)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Level != nil {
		updates["level"] = *req.Level
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.IsWorkshop != nil {
		updates["is_workshop"] = *req.IsWorkshop
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.PassThreshold != nil {
		updates["pass_threshold"] = *req.PassThreshold
	}
	if len(updates) == 0 {
		return utils.BadRequest(c, "Nothing to update")
	}

	if err := cc.DB.Model(course).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}
	cc.invalidate(c, course.ID)

	updated, err := cc.findCourse(course.ID)
	if err != nil {
		return cc.courseLookupError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, updated)
}

func (cc *CoursesController) AddModule(c *fiber.Ctx) error {
	var req ModuleRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	course, err := cc.findCourse(c.Params("id"))
	if err != nil {
		return cc.courseLookupError(c, err)
	}

	quiz, err := store.EncodeQuiz(req.Quiz)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	module := models.Module{
		CourseID:   course.ID,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		OrderIndex: req.OrderIndex,
		Quiz:       quiz,
	}
	if err := cc.DB.Create(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not create module")
	}
	cc.invalidate(c, course.ID)
	return utils.Created(c, module)
}

func (cc *CoursesController) UpdateModule(c *fiber.Ctx) error {
	var req UpdateModuleRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	module, err := cc.findModule(c.Params("id"), c.Params("moduleId"))
	if err != nil {
		return cc.moduleLookupError(c, err)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.OrderIndex != nil {
		updates["order_index"] = *req.OrderIndex
	}
	if req.Quiz != nil {
		quiz, err := store.EncodeQuiz(*req.Quiz)
		if err != nil {
			return utils.BadRequest(c, err.Error())
		}
		if quiz == nil {
			updates["quiz"] = nil
		} else {
			updates["quiz"] = quiz
		}
	}
	if len(updates) == 0 {
		return utils.BadRequest(c, "Nothing to update")
	}

	if err := cc.DB.Model(module).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update module")
	}
	cc.invalidate(c, module.CourseID)

	updated, err := cc.findModule(module.CourseID, module.ID)
	if err != nil {
		return cc.moduleLookupError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, updated)
}

// DeleteModule removes a module. Learners keep it in their completed list; it stops counting
// toward their percentage.
func (cc *CoursesController) DeleteModule(c *fiber.Ctx) error {
	module, err := cc.findModule(c.Params("id"), c.Params("moduleId"))
	if err != nil {
		return cc.moduleLookupError(c, err)
	}
	if err := cc.DB.Delete(module).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete module")
	}
	cc.invalidate(c, module.CourseID)
	return utils.NoContent(c)
}

func (cc *CoursesController) findCourse(id string) (*models.Course, error) {
	var course models.Course
	if err := cc.DB.First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (cc *CoursesController) findModule(courseID, moduleID string) (*models.Module, error) {
	var module models.Module
	if err := cc.DB.Where("id = ? AND course_id = ?", moduleID, courseID).First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (cc *CoursesController) courseLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(c, "Course not found")
	}
	return utils.InternalServerError(c, "Could not load course")
}

func (cc *CoursesController) moduleLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(c, "Module not found")
	}
	return utils.InternalServerError(c, "Could not load module")
}

func (cc *CoursesController) invalidate(c *fiber.Ctx, courseID string) {
	if cc.Cache == nil {
		return
	}
	if err := cc.Cache.Invalidate(c.UserContext(), courseID); err != nil && cc.Logger != nil {
		cc.Logger.Printf("course cache invalidation for %s failed: %v", courseID, err)
	}
}
