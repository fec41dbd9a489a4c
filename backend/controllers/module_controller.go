package controllers

import (
	"log"

	"academy/backend/metrics"
	"academy/backend/middleware"
	"academy/backend/tracker"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ModuleController serves the learner side of a module: its quiz and its completion.
type ModuleController struct {
	Tracker *tracker.Tracker
	Logger  *log.Logger
}

func NewModuleController(tr *tracker.Tracker, logger *log.Logger) *ModuleController {
	return &ModuleController{Tracker: tr, Logger: logger}
}

type SubmitQuizRequest struct {
	Answers []int `json:"answers" validate:"required"`
}

// GetQuiz godoc
// @Summary Request a module quiz
// @Description Returns the questions without correct answers
// @Tags modules
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/modules/{moduleId}/quiz [get]
func (mc *ModuleController) GetQuiz(c *fiber.Ctx) error {
	view, err := mc.Tracker.Quiz(c.UserContext(), middleware.UserID(c), c.Params("id"), c.Params("moduleId"))
	if err != nil {
		return trackerError(c, mc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, view)
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Description Grades the answers; a passing score also completes the module
// @Tags modules
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param request body SubmitQuizRequest true "Chosen option index per question"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/modules/{moduleId}/quiz [post]
func (mc *ModuleController) SubmitQuiz(c *fiber.Ctx) error {
	var req SubmitQuizRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	result, err := mc.Tracker.SubmitQuiz(c.UserContext(), middleware.UserID(c), c.Params("id"), c.Params("moduleId"), req.Answers)
	if err != nil {
		return trackerError(c, mc.Logger, err)
	}
	metrics.ObserveQuiz(result.Passed)
	return utils.Success(c, fiber.StatusOK, result)
}

// CompleteModule godoc
// @Summary Mark a module complete
// @Description Fails with 409 while the module's quiz is not passed
// @Tags modules
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/modules/{moduleId}/complete [post]
func (mc *ModuleController) CompleteModule(c *fiber.Ctx) error {
	userID, courseID, moduleID := middleware.UserID(c), c.Params("id"), c.Params("moduleId")
	ctx := c.UserContext()

	record, err := mc.Tracker.CompleteModule(ctx, userID, courseID, moduleID)
	if err != nil {
		return trackerError(c, mc.Logger, err)
	}
	metrics.ObserveModuleCompleted()
	return utils.Success(c, fiber.StatusOK, ProgressResponse{
		Progress: record,
		State:    tracker.StateOf(record.CompletionPercentage),
	})
}
